package objstore

import "fmt"

// Keys lays out the artifacts of one document under a common prefix.
// Documents are sharded by the first three characters of their ID.
type Keys struct {
	Prefix string
}

func (k Keys) dir(docID string) string {
	shard := docID
	if len(shard) > 3 {
		shard = shard[:3]
	}
	return fmt.Sprintf("%s/%s", k.Prefix, shard)
}

// Report is the markdown report.
func (k Keys) Report(docID string) string {
	return fmt.Sprintf("%s/%s.txt", k.dir(docID), docID)
}

// ReportHTML is the rendered HTML report.
func (k Keys) ReportHTML(docID string) string {
	return fmt.Sprintf("%s/%s.html", k.dir(docID), docID)
}

// RawOCR is the raw fragment dump.
func (k Keys) RawOCR(docID string) string {
	return fmt.Sprintf("%s/%s_raw_ocr.json", k.dir(docID), docID)
}

// TablesJSON is the rendered tables as JSON.
func (k Keys) TablesJSON(docID string) string {
	return fmt.Sprintf("%s/%s_tables.json", k.dir(docID), docID)
}

// TablesDOCX is the rendered tables as a Word document.
func (k Keys) TablesDOCX(docID string) string {
	return fmt.Sprintf("%s/%s_tables.docx", k.dir(docID), docID)
}

// Meta is the document metadata record.
func (k Keys) Meta(docID string) string {
	return fmt.Sprintf("%s/%s_meta.json", k.dir(docID), docID)
}

// All lists every generated artifact key for a document.
func (k Keys) All(docID string) []string {
	return []string{k.Report(docID), k.ReportHTML(docID), k.RawOCR(docID), k.TablesJSON(docID), k.TablesDOCX(docID)}
}

// ByHash is the dedup index entry for a content hash.
func (k Keys) ByHash(hash string) string {
	return fmt.Sprintf("%s/by_hash/%s", k.Prefix, hash)
}
