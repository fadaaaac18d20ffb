package directory

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dartview/dartview-go/internal/domain"

	"golang.org/x/sync/errgroup"
)

const archiveEntryName = "CORPCODE.xml"

type corpCodeDoc struct {
	XMLName xml.Name    `xml:"result"`
	List    []corpEntry `xml:"list"`
}

type corpEntry struct {
	CorpCode    string `xml:"corp_code"`
	CorpName    string `xml:"corp_name"`
	CorpEngName string `xml:"corp_eng_name"`
	StockCode   string `xml:"stock_code"`
	ModifyDate  string `xml:"modify_date"`
}

// ParseCorpCodeArchive extracts CORPCODE.xml from the downloaded ZIP and
// parses the full corporation list.
func ParseCorpCodeArchive(data []byte) ([]domain.Company, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open corp code archive: %w", err)
	}

	var entry *zip.File
	for _, f := range zr.File {
		if strings.EqualFold(f.Name, archiveEntryName) {
			entry = f
			break
		}
	}
	if entry == nil {
		return nil, fmt.Errorf("archive has no %s entry", archiveEntryName)
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", archiveEntryName, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", archiveEntryName, err)
	}

	var doc corpCodeDoc
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", archiveEntryName, err)
	}

	companies := make([]domain.Company, 0, len(doc.List))
	for _, e := range doc.List {
		companies = append(companies, domain.Company{
			CorpCode:    strings.TrimSpace(e.CorpCode),
			CorpName:    strings.TrimSpace(e.CorpName),
			CorpNameEng: strings.TrimSpace(e.CorpEngName),
			StockCode:   strings.TrimSpace(e.StockCode),
			ModifyDate:  strings.TrimSpace(e.ModifyDate),
		})
	}
	return companies, nil
}

// WriteFiles writes the full directory and the listed-only subset as JSON,
// concurrently. The listed file is what the server loads at startup.
func WriteFiles(ctx context.Context, companies []domain.Company, corpsPath, listedPath string) error {
	listed := make([]domain.Company, 0, len(companies))
	for _, c := range companies {
		if c.Listed() {
			listed = append(listed, c)
		}
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error { return writeJSONFile(corpsPath, companies) })
	g.Go(func() error { return writeJSONFile(listedPath, listed) })
	return g.Wait()
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
