package seb

import (
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Environment map keys set by Environ.
const (
	EnvRequestMethod = "REQUEST_METHOD"
	EnvScriptName    = "SCRIPT_NAME"
	EnvPathInfo      = "PATH_INFO"
	EnvQueryString   = "QUERY_STRING"
	EnvServerName    = "SERVER_NAME"
	EnvServerPort    = "SERVER_PORT"
	EnvRemoteHost    = "REMOTE_HOST"
	EnvRemoteAddr    = "REMOTE_ADDR"
	EnvRemotePort    = "REMOTE_PORT"
	EnvRequestScheme = "REQUEST_SCHEME"
	EnvContentType   = "CONTENT_TYPE"
	EnvContentLength = "CONTENT_LENGTH"
)

// decodeLatin1 decodes raw wire bytes one byte per character.
func decodeLatin1(b []byte) string {
	s, _ := charmap.ISO8859_1.NewDecoder().Bytes(b)
	return string(s)
}

// envHeaderKey maps a wire header name to its environment map key.
// content-type and content-length keep their bare names, everything
// else gets the HTTP_ prefix.
func envHeaderKey(name []byte) string {
	key := strings.ToUpper(strings.ReplaceAll(decodeLatin1(name), "-", "_"))
	if key != EnvContentType && key != EnvContentLength {
		key = "HTTP_" + key
	}
	return key
}

// Environ translates a Descriptor into the CGI style environment map
// expected by synchronous handler code. It never fails; missing optional
// fields become empty values. Repeated header names are coalesced in
// arrival order, joined with "; ".
func Environ(desc *Descriptor) map[string]string {
	scheme := desc.Scheme
	if scheme == "" {
		scheme = "http"
	}
	environ := map[string]string{
		EnvRequestMethod: desc.Method,
		EnvScriptName:    desc.RootPath,
		EnvPathInfo:      desc.RootPath + desc.Path,
		EnvQueryString:   decodeLatin1(desc.RawQuery),
		EnvRequestScheme: scheme,
		EnvServerName:    "",
		EnvServerPort:    "",
		EnvRemoteHost:    "",
		EnvRemoteAddr:    "",
		EnvRemotePort:    "",
	}
	if ep := desc.Server; ep != nil {
		environ[EnvServerName] = ep.Host
		environ[EnvServerPort] = strconv.Itoa(ep.Port)
	}
	if ep := desc.Client; ep != nil {
		environ[EnvRemoteHost] = ep.Host
		environ[EnvRemoteAddr] = ep.Host
		environ[EnvRemotePort] = strconv.Itoa(ep.Port)
	}
	for _, hf := range desc.Headers {
		key := envHeaderKey(hf.Name)
		value := decodeLatin1(hf.Value)
		if prev, ok := environ[key]; ok {
			value = prev + "; " + value
		}
		environ[key] = value
	}
	return environ
}
