package service

import (
	"net/http"

	"github.com/sugawarayuuta/sonnet"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	out, err := sonnet.Marshal(body)
	if err != nil {
		return
	}
	_, _ = w.Write(out)
}
