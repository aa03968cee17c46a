// Package json aliases the sonic JSON implementation so the rest of the
// module never imports a JSON codec directly.
package json

import "github.com/bytedance/sonic"

var (
	Marshal       = sonic.Marshal
	Unmarshal     = sonic.Unmarshal
	MarshalString = sonic.MarshalString
)

// MarshalIndent pretty-prints v with the given prefix and indent.
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return sonic.ConfigDefault.MarshalIndent(v, prefix, indent)
}
