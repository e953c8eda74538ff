package review

import "customsdesk/internal/model"

// MergeBatch appends a freshly parsed batch to the existing collection.
//
// Existing rows are never touched. New rows with an empty manufacturer get the
// batch's detected supplier (falling back to the report-level supplier), so a
// second upload from a different supplier doesn't relabel rows the user has
// already filled in. Report metadata fields are back-filled only where they
// are currently empty, so manual edits survive later uploads.
//
// The caller applies the returned collection and metadata as one state update;
// a non-OK upload never reaches this function, so the merge is all-or-nothing
// per upload.
func MergeBatch(items []model.Item, batch []model.Item, batchMeta *model.BatchMeta, meta model.ReportMeta, gen *IDGen) ([]model.Item, model.ReportMeta) {
	supplier := meta.Supplier
	if batchMeta != nil && batchMeta.Supplier != "" {
		supplier = batchMeta.Supplier
	}

	out := make([]model.Item, 0, len(items)+len(batch))
	out = append(out, items...)
	for _, rec := range batch {
		if rec.ID == 0 && gen != nil {
			rec.ID = gen.Next()
		}
		if rec.Manufacturer == "" {
			rec.Manufacturer = supplier
		}
		out = append(out, rec)
	}

	if batchMeta != nil {
		if meta.ContractNo == "" {
			meta.ContractNo = batchMeta.InvoiceNumber
		}
		if meta.ContractDate == "" {
			meta.ContractDate = batchMeta.InvoiceDate
		}
	}
	return out, meta
}
