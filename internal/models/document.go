// ABOUTME: Document is raw text submitted for indexing during one process action
package models

// Document holds extracted text and the name it was loaded from
type Document struct {
	Name string `json:"name"`
	Text string `json:"text"`
}
