package version

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"ndvpal/pkg/proto"
)

// Set at link time with -ldflags "-X ndvpal/pkg/version.Revision=...".
var (
	Version   string = "1.0"
	Revision  string = ""
	BuildId   string = ""
	BuildTime string = ""
)

type field struct {
	label string
	value string
}

func OnelineVersionString() string {
	return Version + "." + Revision + "." + BuildId
}

// buildFields lists the non-empty build attributes in display order.
func buildFields() []field {
	all := []field{
		{"Build No. ", BuildId},
		{"Git Commit", Revision},
		{"Go Version", runtime.Version()},
		{"OS/Arch   ", runtime.GOOS + "/" + runtime.GOARCH},
		{"PAL       ", fmt.Sprintf("version %d", proto.CurrentVersion)},
		{"Built     ", BuildTime},
	}
	fields := all[:0]
	for _, f := range all {
		if f.value != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

func WriteVersionInfo(w io.Writer) {
	fmt.Fprintf(w, "\nndvpal %s %s\n\n", filepath.Base(os.Args[0]), Version)
	for _, f := range buildFields() {
		fmt.Fprintf(w, "  %s: %s\n", f.label, f.value)
	}
	fmt.Fprintln(w)
}

func PrintVersionInfo() {
	WriteVersionInfo(os.Stdout)
}
