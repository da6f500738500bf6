package validators

import (
	"mime"
	"net/http"

	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
)

// IsFormRequest reports whether the request carries an urlencoded form body.
func IsFormRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/x-www-form-urlencoded"
}

// ParseCredentialsForm reads the password-grant style username/password fields.
func ParseCredentialsForm(r *http.Request) (string, string, error) {
	if r.Body != nil {
		r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	}
	if err := r.ParseForm(); err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body")
	}
	return r.PostForm.Get("username"), r.PostForm.Get("password"), nil
}
