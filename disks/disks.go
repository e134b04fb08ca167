// Package disks ships a small catalog of named disk-size profiles so a
// session can be created with "--disk floppy" instead of a byte count.
package disks

import (
	_ "embed"
	"fmt"

	"github.com/gocarina/gocsv"
	"github.com/pedromagedanz/simfs"
)

//go:embed profiles.csv
var profilesCSV string

// DiskProfile is one named disk size.
type DiskProfile struct {
	Slug       string `csv:"slug"`
	Name       string `csv:"name"`
	TotalBytes int64  `csv:"total_bytes"`
	Notes      string `csv:"notes"`
}

var profiles []*DiskProfile

func init() {
	if err := gocsv.UnmarshalString(profilesCSV, &profiles); err != nil {
		panic(fmt.Sprintf("embedded disk profile catalog is malformed: %s", err))
	}
}

// Profiles returns the catalog in file order.
func Profiles() []*DiskProfile {
	return profiles
}

// BySlug finds a profile by its slug.
func BySlug(slug string) (*DiskProfile, error) {
	for _, profile := range profiles {
		if profile.Slug == slug {
			return profile, nil
		}
	}
	return nil, simfs.ErrNotFound.WithMessage(
		fmt.Sprintf("no disk profile named %q", slug))
}
