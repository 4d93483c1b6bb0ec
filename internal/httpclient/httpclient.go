package httpclient

import (
	"crypto/tls"
	"io"
	"net/http"
	"time"
)

// maxErrorBody bounds how much of a failed response is kept for logs and errors.
const maxErrorBody = 4096

// New returns a client for one remote system. insecure disables certificate
// verification for local Ed-Fi installs with self-signed certificates.
func New(timeout time.Duration, insecure bool) *http.Client {
	client := &http.Client{Timeout: timeout}
	if insecure {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		client.Transport = transport
	}
	return client
}

func ReadBody(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return string(body)
}

func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
