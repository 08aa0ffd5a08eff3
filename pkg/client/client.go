package client

import (
	"net/http"
	"time"
)

// downloads are bounded per request by context, the client timeout only
// catches a stalled connection
var downloadClient = &http.Client{
	Timeout: 10 * time.Minute,
	Transport: &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          50,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       30,
		IdleConnTimeout:       120 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 90 * time.Second,
	},
}

// GetDownloadClient returns the shared client for media downloads and size
// probes against the storage host.
func GetDownloadClient() *http.Client {
	return downloadClient
}
