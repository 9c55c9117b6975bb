package gcperr

import "encoding/json"

// jsonAuthContentType is the one content-type spec.md documents as
// carrying a structured auth error body.
const jsonAuthContentType = "application/json; charset=utf-8"

type authErrorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ClassifyResponse turns a non-2xx HTTP response into the right Error
// variant: a structured Auth error when the body is JSON with the
// documented content-type, HTTPStatus otherwise. Callers with a 2xx
// status should not call this.
func ClassifyResponse(status int, contentType string, body []byte) error {
	if contentType == jsonAuthContentType {
		var ae authErrorBody
		if err := json.Unmarshal(body, &ae); err == nil && (ae.Error != "" || ae.ErrorDescription != "") {
			return Auth(ae.Error, ae.ErrorDescription)
		}
	}
	return HTTPStatus(status)
}

// IsSuccess reports whether status is a 2xx response.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
