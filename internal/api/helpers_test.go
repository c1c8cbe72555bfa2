package api

import (
	"encoding/json"
	"net/http"
)

func jsonHeader() http.Header {
	return http.Header{"Content-Type": []string{"application/json"}}
}

func decodeJSONBody(req *http.Request, out any) error {
	defer func() { _ = req.Body.Close() }()
	return json.NewDecoder(req.Body).Decode(out)
}
