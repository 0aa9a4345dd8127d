package builtins

import "strings"

// SecurityProvider is the injected collaborator for encrypt/decrypt/
// mask_data: spec.md §4.H calls these "implementation is an injected
// collaborator" rather than something the built-in library does itself.
type SecurityProvider interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// defaultMask preserves the last 4 characters of s, masking the rest with
// "*", the default behavior spec.md §4.H names when no collaborator
// override is configured.
func defaultMask(s string) string {
	r := []rune(s)
	if len(r) <= 4 {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-4) + string(r[len(r)-4:])
}

func (r *Registry) secEncrypt(args []interface{}) (interface{}, error) {
	plaintext := toStringValue(arg(args, 0))
	if r.security == nil {
		return nil, nil
	}
	return r.security.Encrypt(plaintext)
}

func (r *Registry) secDecrypt(args []interface{}) (interface{}, error) {
	ciphertext := toStringValue(arg(args, 0))
	if r.security == nil {
		return nil, nil
	}
	return r.security.Decrypt(ciphertext)
}

func (r *Registry) secMaskData(args []interface{}) (interface{}, error) {
	return defaultMask(toStringValue(arg(args, 0))), nil
}
