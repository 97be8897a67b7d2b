// Package validate enforces the upload constraints for printable files.
//
// These checks are pure functions with no side effects. They run twice on
// purpose: once in the handler before the client even asks for an upload
// ticket (cheap early feedback), and again inside the upload service at
// the moment the presigned URL is issued. The second check is the trust
// boundary — the first one may have run in an untrusted client.
package validate

import (
	"fmt"
	"strings"

	"github.com/sakif/print-queue/internal/apperror"
)

// MaxFileSize is the upload ceiling: 50 MiB.
const MaxFileSize = 50 * 1024 * 1024

// AllowedExtensions is the allow-list of printable file types, keyed by
// the lowercase extension without the dot.
var AllowedExtensions = []string{"stl", "3mf", "obj", "gcode"}

// CheckFile validates a file's name and size against the upload rules.
// Returns nil when the file is acceptable, or an apperror validation
// error whose message is safe to show to the user.
func CheckFile(fileName string, sizeBytes int64) error {
	if sizeBytes > MaxFileSize {
		maxMB := MaxFileSize / (1024 * 1024)
		return apperror.ValidationFailed("fileSize",
			fmt.Sprintf("File is too large. Maximum size is %dMB.", maxMB))
	}

	ext := Extension(fileName)
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}

	return apperror.ValidationFailed("fileName",
		fmt.Sprintf("Invalid file type %q. Allowed types: %s",
			"."+ext, "."+strings.Join(AllowedExtensions, ", .")))
}

// Extension returns the lowercase substring after the final '.' in
// fileName, without the dot. A name with no dot yields "".
//
// Callers use this to populate a job's FileType after CheckFile has
// passed — it is not re-validated against the allow-list a second time.
func Extension(fileName string) string {
	idx := strings.LastIndex(fileName, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(fileName[idx+1:])
}
