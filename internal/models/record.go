// ABOUTME: Record is a structured chapter listing served by the record store
// ABOUTME: Only a chapter's content is consumed by the chat core
package models

// ChapterContent is one chapter of a record
type ChapterContent struct {
	Chapter string `json:"chapter" yaml:"chapter"`
	Content string `json:"content" yaml:"content"`
}

// Record groups chapter contents by board, class and subject
type Record struct {
	Board    string           `json:"board" yaml:"board"`
	Class    string           `json:"class" yaml:"class"`
	Subject  string           `json:"subject" yaml:"subject"`
	Contents []ChapterContent `json:"contents" yaml:"contents"`
}

// Key returns the board/class/subject path identifying the record
func (r Record) Key() string {
	return r.Board + "/" + r.Class + "/" + r.Subject
}

// Chapters returns the chapter names in stored order
func (r Record) Chapters() []string {
	names := make([]string, len(r.Contents))
	for i, c := range r.Contents {
		names[i] = c.Chapter
	}
	return names
}
