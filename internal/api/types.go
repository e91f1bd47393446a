package api

import "github.com/samcharles93/srmkit/pkg/srm"

// Download describes one produced file held by the server.
type Download struct {
	ID        string `json:"id"`
	Object    string `json:"object"`
	Name      string `json:"name"`
	Size      int    `json:"size"`
	URL       string `json:"url"`
	CreatedAt int64  `json:"created_at"`
}

// ConversionResponse is returned by the merge and split endpoints. Message
// carries the non-fatal outcome when nothing was produced.
type ConversionResponse struct {
	ID        string     `json:"id"`
	Object    string     `json:"object"`
	Operation string     `json:"operation"`
	Message   string     `json:"message,omitempty"`
	Downloads []Download `json:"downloads"`
}

type InspectResponse struct {
	Object string `json:"object"`
	Name   string `json:"name"`
	srm.Info
}

type DeleteDownloadResp struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}
