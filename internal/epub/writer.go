package epub

import (
	"archive/zip"
	"os"
	"path/filepath"

	"guidepress/internal/services"
)

const mimetypeContent = "application/epub+zip"

// Write validates the book and writes the archive to path. The file is
// assembled in a temp file in the target directory and renamed into place.
func (b *Book) Write(path string) error {
	if b.meta.Title == "" {
		return services.Wrap(services.ErrAssembly, "assembling", "validate book", "book has no title", nil)
	}
	if len(b.chapters) == 0 {
		return services.Wrap(services.ErrAssembly, "assembling", "validate book", "book has no chapters", nil)
	}

	opf, err := b.buildOPF()
	if err != nil {
		return err
	}
	ncx, err := b.buildNCX()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrAssembly, "assembling", "create output directory", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".epub-*")
	if err != nil {
		return services.Wrap(services.ErrAssembly, "assembling", "create temp file", "", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmpPath != "" {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := b.writeArchive(tmp, opf, ncx); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return services.Wrap(services.ErrAssembly, "assembling", "close temp file", "", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return services.Wrap(services.ErrAssembly, "assembling", "set permissions", "", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return services.Wrap(services.ErrAssembly, "assembling", "rename output", path, err)
	}
	tmpPath = ""
	return nil
}

func (b *Book) writeArchive(out *os.File, opf, ncx []byte) error {
	zw := zip.NewWriter(out)

	// The mimetype entry must be first and stored uncompressed.
	mimeWriter, err := zw.CreateHeader(&zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	})
	if err != nil {
		return services.Wrap(services.ErrAssembly, "assembling", "write mimetype", "", err)
	}
	if _, err := mimeWriter.Write([]byte(mimetypeContent)); err != nil {
		return services.Wrap(services.ErrAssembly, "assembling", "write mimetype", "", err)
	}

	entries := []struct {
		name string
		data []byte
	}{
		{"META-INF/container.xml", []byte(containerXML)},
		{contentDir + "/" + opfFile, opf},
		{contentDir + "/" + navFile, b.buildNav()},
		{contentDir + "/" + ncxFile, ncx},
		{contentDir + "/" + stylesheetFile, b.stylesheet},
		{contentDir + "/" + coverFile, b.coverDocument()},
	}
	for _, ch := range b.chapters {
		entries = append(entries, struct {
			name string
			data []byte
		}{contentDir + "/" + ch.Filename, chapterDocument(ch)})
	}
	for _, res := range b.resources {
		entries = append(entries, struct {
			name string
			data []byte
		}{contentDir + "/" + res.Filename, res.Content})
	}
	if b.coverImage != nil {
		entries = append(entries, struct {
			name string
			data []byte
		}{contentDir + "/" + b.coverImage.Filename, b.coverImage.Content})
	}

	for _, entry := range entries {
		w, err := zw.Create(entry.name)
		if err != nil {
			return services.Wrap(services.ErrAssembly, "assembling", "write archive entry", entry.name, err)
		}
		if _, err := w.Write(entry.data); err != nil {
			return services.Wrap(services.ErrAssembly, "assembling", "write archive entry", entry.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return services.Wrap(services.ErrAssembly, "assembling", "finalize archive", "", err)
	}
	return nil
}
