package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Item is one editable line entry in the invoice review grid.
//
// The backend parser returns items without IDs; the client assigns a
// session-unique ID at creation time so grid rows keep a stable identity
// across re-renders. IDs are never reused after deletion.
type Item struct {
	ID             int64    `json:"id,omitempty"`
	Designation    string   `json:"designation"`
	RawDescription string   `json:"raw_description,omitempty"`
	Name           string   `json:"name"`
	Material       string   `json:"material"`
	Weight         float64  `json:"weight"`
	Dimensions     string   `json:"dimensions"`
	Description    string   `json:"description,omitempty"`
	Manufacturer   string   `json:"manufacturer,omitempty"`
	Condition      string   `json:"condition,omitempty"`
	Quantity       Quantity `json:"quantity,omitempty"`
	Price          float64  `json:"price,omitempty"`
	Amount         float64  `json:"amount,omitempty"`
	FoundInDB      bool     `json:"found_in_db"`
	ImagePath      *string  `json:"image_path"`
	ParsingMethod  string   `json:"parsing_method,omitempty"`
}

// NewItem returns an empty row with the defaults the "add row" action uses.
func NewItem(id int64) Item {
	return Item{ID: id, Quantity: "1"}
}

// Quantity is numeric-or-text on the wire: parsers return numbers, users type
// free text ("2 шт"). It round-trips numbers as numbers and text as strings.
type Quantity string

func (q Quantity) String() string { return string(q) }

func (q *Quantity) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*q = ""
		return nil
	}
	if len(s) > 0 && s[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*q = Quantity(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*q = Quantity(n.String())
	return nil
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	s := string(q)
	if s == "" {
		return []byte(`""`), nil
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

// Part is the canonical catalog entry an Item may reference by designation.
type Part struct {
	ID               int64   `json:"id"`
	Designation      string  `json:"designation"`
	Name             string  `json:"name"`
	Material         string  `json:"material"`
	Weight           float64 `json:"weight"`
	WeightUnit       string  `json:"weight_unit"`
	Dimensions       string  `json:"dimensions"`
	Description      string  `json:"description"`
	Manufacturer     string  `json:"manufacturer"`
	Condition        string  `json:"condition"`
	ComponentType    string  `json:"component_type"`
	Specs            SpecMap `json:"specs"`
	ImagePath        *string `json:"image_path"`
	TnvedCode        *string `json:"tnved_code"`
	TnvedDescription *string `json:"tnved_description"`
}

// ShowsSpecs reports whether the detail view should render the characteristics
// editor: electronics always get one, and any part with stored specs does too.
func (p Part) ShowsSpecs() bool {
	return p.ComponentType == "electronics" || p.Specs.Len() > 0
}

// PartPatch is a partial update sent to PUT /api/v1/parts/{id}.
// Nil fields are omitted; Specs is sent as null when the map is empty,
// which is how the backend clears characteristics.
type PartPatch struct {
	Material         *string  `json:"material,omitempty"`
	Dimensions       *string  `json:"dimensions,omitempty"`
	Weight           *float64 `json:"weight,omitempty"`
	WeightUnit       *string  `json:"weight_unit,omitempty"`
	Description      *string  `json:"description,omitempty"`
	Manufacturer     *string  `json:"manufacturer,omitempty"`
	Condition        *string  `json:"condition,omitempty"`
	TnvedCode        *string  `json:"tnved_code,omitempty"`
	TnvedDescription *string  `json:"tnved_description,omitempty"`
	Specs            *SpecMap `json:"specs"`
}

// ReportMeta is the shared report-level metadata entered once per review
// session and sent with the generate request.
type ReportMeta struct {
	CountryOfOrigin string `json:"country_of_origin"`
	ContractNo      string `json:"contract_no"`
	ContractDate    string `json:"contract_date"`
	Supplier        string `json:"supplier"`
	InvoiceNo       string `json:"invoice_no"`
	InvoiceDate     string `json:"invoice_date"`
	WaybillNo       string `json:"waybill_no"`
}

// DocSelection picks which customs documents the backend should generate.
type DocSelection struct {
	GenTechDesc     bool `json:"gen_tech_desc"`
	GenNonInsurance bool `json:"gen_non_insurance"`
	GenDecision130  bool `json:"gen_decision_130"`
	AddFacsimile    bool `json:"add_facsimile"`
}

// FallbackFilename is the deterministic download name used when the backend
// response carries no Content-Disposition header: a single selected document
// gets its well-known name, anything else is a zip bundle.
func (d DocSelection) FallbackFilename() string {
	selected := 0
	for _, on := range []bool{d.GenTechDesc, d.GenNonInsurance, d.GenDecision130} {
		if on {
			selected++
		}
	}
	if selected == 1 {
		switch {
		case d.GenTechDesc:
			return "Technical_Description.docx"
		case d.GenNonInsurance:
			return "Non_Insurance_Letter.docx"
		case d.GenDecision130:
			return "Decision_130_Notification.docx"
		}
	}
	return "Documents.zip"
}

// BatchMeta is the per-upload metadata the parser detects in an invoice.
type BatchMeta struct {
	Supplier      string `json:"supplier,omitempty"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
	InvoiceDate   string `json:"invoice_date,omitempty"`
}

// TokenUsage mirrors the parser's token accounting. Completion and candidates
// are provider-specific names for the same counter.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	CandidatesTokens int `json:"candidates_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens"`
}

type KeyAttempt struct {
	Page   int    `json:"page"`
	Status string `json:"status"`
	KeyIdx int    `json:"key_idx"`
	Model  string `json:"model"`
	Tokens int    `json:"tokens,omitempty"`
	Error  string `json:"error,omitempty"`
}

// DebugInfo is diagnostic output from the parsing backend, shown on demand.
type DebugInfo struct {
	MethodUsed  string       `json:"method_used"`
	GeminiModel string       `json:"gemini_model,omitempty"`
	TokenUsage  *TokenUsage  `json:"token_usage,omitempty"`
	Error       string       `json:"error,omitempty"`
	KeyAttempts []KeyAttempt `json:"key_attempts,omitempty"`
}

// UploadResponse is the parse result for one uploaded invoice.
type UploadResponse struct {
	Items     []Item     `json:"items"`
	Metadata  *BatchMeta `json:"metadata,omitempty"`
	DebugInfo *DebugInfo `json:"debug_info,omitempty"`
}

// GenerateRequest is the JSON body of POST /api/v1/invoices/generate.
type GenerateRequest struct {
	Items           []Item `json:"items"`
	CountryOfOrigin string `json:"country_of_origin"`
	ContractNo      string `json:"contract_no"`
	ContractDate    string `json:"contract_date"`
	Supplier        string `json:"supplier"`
	InvoiceNo       string `json:"invoice_no"`
	InvoiceDate     string `json:"invoice_date"`
	WaybillNo       string `json:"waybill_no"`
	GenTechDesc     bool   `json:"gen_tech_desc"`
	GenNonInsurance bool   `json:"gen_non_insurance"`
	GenDecision130  bool   `json:"gen_decision_130"`
	AddFacsimile    bool   `json:"add_facsimile"`
}

// NewGenerateRequest assembles the generate payload from the review state.
func NewGenerateRequest(items []Item, meta ReportMeta, sel DocSelection) GenerateRequest {
	return GenerateRequest{
		Items:           items,
		CountryOfOrigin: meta.CountryOfOrigin,
		ContractNo:      meta.ContractNo,
		ContractDate:    meta.ContractDate,
		Supplier:        meta.Supplier,
		InvoiceNo:       meta.InvoiceNo,
		InvoiceDate:     meta.InvoiceDate,
		WaybillNo:       meta.WaybillNo,
		GenTechDesc:     sel.GenTechDesc,
		GenNonInsurance: sel.GenNonInsurance,
		GenDecision130:  sel.GenDecision130,
		AddFacsimile:    sel.AddFacsimile,
	}
}
