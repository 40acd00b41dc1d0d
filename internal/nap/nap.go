// Package nap forwards generated files to the companion nap server
// when the bot and the chat client run on different hosts. The server
// accepts a multipart upload on /file and answers with the path the
// file was stored under.
package nap

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/imroc/req"
	"github.com/tidwall/gjson"
)

// ShouldForward reports whether a file transfer is needed at all. No
// address or a localhost address means the chat client reads the bot's
// files directly.
func ShouldForward(address string) bool {
	return address != "" && address != "localhost"
}

// SendFile uploads path to the nap server and returns the path under
// which the companion stored it.
func SendFile(path, host string, port int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	resp, err := req.Post(fmt.Sprintf("http://%s:%d/file", host, port), req.FileUpload{
		File:      f,
		FieldName: "file",
		FileName:  filepath.Base(path),
	})
	if err != nil {
		return "", err
	}
	if resp.Response().StatusCode >= 300 {
		return "", fmt.Errorf("nap server error: %s", resp.Response().Status)
	}
	body := strings.TrimSpace(resp.String())
	if p := gjson.Get(body, "path"); p.Exists() {
		return p.String(), nil
	}
	if body == "" {
		return "", fmt.Errorf("nap server returned no path")
	}
	return body, nil
}
