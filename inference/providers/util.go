package providers

import (
	"os"
	"runtime"
)

// SharedLibPathEnv overrides the onnxruntime shared library location.
const SharedLibPathEnv = "ONNXRUNTIME_SHARED_LIBRARY_PATH"

// GetSharedLibPath returns the path to the shared library for the current platform.
//
// Returns:
//   - string: The value of SharedLibPathEnv when set, otherwise the bundled
//     library under ./third_party for this OS and architecture.
func GetSharedLibPath() string {
	if p := os.Getenv(SharedLibPathEnv); p != "" {
		return p
	}
	return sharedLibPathFor(runtime.GOOS, runtime.GOARCH)
}

func sharedLibPathFor(goos, goarch string) string {
	switch goos {
	case "windows":
		return "./third_party/onnxruntime.dll"
	case "darwin":
		return "./third_party/libonnxruntime.dylib"
	default:
		if goarch == "arm64" {
			return "./third_party/onnxruntime_arm64.so"
		}
		return "./third_party/onnxruntime.so"
	}
}
