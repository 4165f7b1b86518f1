// Chapter archives. Finished chapters are packed into .cbz (zip) files;
// reading them back goes through an archive filesystem so other comic
// archive formats dropped into the downloads directory work too.

package downloader

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/mholt/archives"

	"github.com/yomu-reader/yomu-go/internal/models"
	"github.com/yomu-reader/yomu-go/internal/util"
)

// WriteCBZ packs every image in dir into a zip archive at cbzPath, pages
// ordered by filename.
func WriteCBZ(dir, cbzPath string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !util.IsImageFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	if len(names) == 0 {
		return fmt.Errorf("no images in %s", dir)
	}
	sort.Slice(names, func(i, j int) bool {
		return util.NaturalSortLess(names[i], names[j])
	})

	out, err := os.Create(cbzPath)
	if err != nil {
		return err
	}
	defer out.Close()

	zipWriter := zip.NewWriter(out)
	for _, name := range names {
		f, err := zipWriter.Create(name)
		if err != nil {
			return fmt.Errorf("failed to create %s in archive: %w", name, err)
		}
		src, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		_, err = io.Copy(f, src)
		src.Close()
		if err != nil {
			return fmt.Errorf("failed to write %s to archive: %w", name, err)
		}
	}
	return zipWriter.Close()
}

// ListPages returns the image pages of a chapter archive in reading
// order. Page names are sorted naturally so "page_2" comes before
// "page_10".
func ListPages(ctx context.Context, archivePath string) ([]*models.Page, error) {
	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}

	var pages []*models.Page
	err = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !util.IsImageFile(path) {
			return nil
		}
		pages = append(pages, &models.Page{FileName: path})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(pages, func(i, j int) bool {
		return util.NaturalSortLess(pages[i].FileName, pages[j].FileName)
	})
	for i := range pages {
		pages[i].Index = i
	}
	return pages, nil
}

// ReadPage returns the raw bytes of one page inside a chapter archive.
func ReadPage(ctx context.Context, archivePath, fileName string) ([]byte, error) {
	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	data, err := fs.ReadFile(fsys, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to read page %s: %w", fileName, err)
	}
	return data, nil
}
