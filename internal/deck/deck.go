// Package deck groups the three input files a model run is built from: the
// control file, the bathymetry, and the layer profile. A Deck is decoded
// from individual paths and written back as a directory, with the filesystem
// abstracted through billy so tests can run against an in-memory fs.
package deck

import (
	"fmt"
	"os"
	"path/filepath"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/hydrosuite/qualw2/internal/bathy"
	"github.com/hydrosuite/qualw2/internal/card"
	"github.com/hydrosuite/qualw2/internal/config"
	"github.com/hydrosuite/qualw2/internal/profile"
)

// Standard output filenames within a run directory.
const (
	ControlName    = "w2_con.csv"
	BathymetryName = "bathymetry.csv"
	ProfileName    = "profile_init.npt"
)

// Deck is a complete set of decoded model inputs.
type Deck struct {
	Con        *config.File
	Bathymetry *bathy.File
	Profile    *profile.File
}

// WriteOptions controls how WriteDirectory treats the target directory.
type WriteOptions struct {
	// Overwrite permits replacing files that already exist in the target.
	Overwrite bool

	// MakeDirs creates the target directory and any missing parents.
	MakeDirs bool
}

// FromFiles decodes a deck from its three source paths, aggregating the
// recoverable warnings from all of them.
func FromFiles(conPath, bathyPath, profilePath string) (*Deck, []card.Warning, error) {
	var warns []card.Warning

	con, w, err := config.DecodeFile(conPath)
	warns = append(warns, w...)
	if err != nil {
		return nil, warns, err
	}

	// The bathymetry decoder has no recoverable conditions; anything odd is
	// a hard parse error.
	bth, err := bathy.DecodeFile(bathyPath)
	if err != nil {
		return nil, warns, err
	}

	prof, w, err := profile.DecodeFile(profilePath)
	warns = append(warns, w...)
	if err != nil {
		return nil, warns, err
	}

	return &Deck{Con: con, Bathymetry: bth, Profile: prof}, warns, nil
}

// WriteDirectory encodes the deck into dir on fs under the standard
// filenames. Collisions and a missing target are checked up front so a
// refused write leaves the directory untouched.
func (d *Deck) WriteDirectory(fs billy.Filesystem, dir string, opts WriteOptions) error {
	if _, err := fs.Stat(dir); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("stat %s: %w", dir, err)
		}
		if !opts.MakeDirs {
			return fmt.Errorf("target directory %s does not exist", dir)
		}
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	names := []string{ControlName, BathymetryName, ProfileName}
	if !opts.Overwrite {
		for _, name := range names {
			p := fs.Join(dir, name)
			if _, err := fs.Stat(p); err == nil {
				return fmt.Errorf("%s already exists and overwrite is disabled", p)
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("stat %s: %w", p, err)
			}
		}
	}

	conBytes, err := d.Con.Bytes()
	if err != nil {
		return fmt.Errorf("encode control file: %w", err)
	}
	bathyLines := d.Bathymetry.Encode()
	profLines, err := d.Profile.Encode()
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	files := map[string][]byte{
		ControlName:    conBytes,
		BathymetryName: joinLines(bathyLines),
		ProfileName:    joinLines(profLines),
	}
	for _, name := range names {
		p := fs.Join(dir, name)
		if err := util.WriteFile(fs, p, files[name], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", p, err)
		}
	}
	return nil
}

// Paths resolves the standard deck filenames within dir.
func Paths(dir string) (con, bth, prof string) {
	return filepath.Join(dir, ControlName),
		filepath.Join(dir, BathymetryName),
		filepath.Join(dir, ProfileName)
}

func joinLines(lines []string) []byte {
	out := make([]byte, 0, 64*len(lines))
	for _, l := range lines {
		out = append(out, l...)
		out = append(out, '\n')
	}
	return out
}
