package entity

import (
	"fmt"
	"path/filepath"
)

// CodeBlock is one function, method or constructor extracted from a source file.
// Its JSON form is what the model receives as input.
type CodeBlock struct {
	BlockID        string  `json:"block_id"`
	FunctionName   string  `json:"function_name"`
	ClassContext   *string `json:"class_context"`
	PackageContext *string `json:"package_context,omitempty"`
	StartLine      int     `json:"start_line"`
	EndLine        int     `json:"end_line"`
	Signature      string  `json:"signature"`
	Code           string  `json:"code"`
	Language       string  `json:"language"`
	IsConstructor  bool    `json:"is_constructor,omitempty"`
}

// BlockID builds the identifier "<basename>_<index>".
func BlockID(filePath string, index int) string {
	return fmt.Sprintf("%s_%d", filepath.Base(filePath), index)
}

// ClassName returns the enclosing class or "" for module-level functions.
func (b CodeBlock) ClassName() string {
	if b.ClassContext == nil {
		return ""
	}
	return *b.ClassContext
}

// StringPtr returns nil for "" and a pointer to s otherwise.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
