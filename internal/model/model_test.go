package model

import (
	"encoding/json"
	"testing"
)

func TestQuantity_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want Quantity
		out  string
	}{
		{"number", `3`, "3", `3`},
		{"float", `2.5`, "2.5", `2.5`},
		{"text", `"2 шт"`, "2 шт", `"2 шт"`},
		{"numeric string collapses to number", `"10"`, "10", `10`},
		{"null", `null`, "", `""`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var q Quantity
			if err := json.Unmarshal([]byte(tc.in), &q); err != nil {
				t.Fatalf("unmarshal %s: %v", tc.in, err)
			}
			if q != tc.want {
				t.Fatalf("quantity = %q; want %q", q, tc.want)
			}
			out, err := json.Marshal(q)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(out) != tc.out {
				t.Fatalf("marshal = %s; want %s", out, tc.out)
			}
		})
	}
}

func TestDocSelection_FallbackFilename(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		sel  DocSelection
		want string
	}{
		{"tech only", DocSelection{GenTechDesc: true}, "Technical_Description.docx"},
		{"non-insurance only", DocSelection{GenNonInsurance: true}, "Non_Insurance_Letter.docx"},
		{"decision only", DocSelection{GenDecision130: true}, "Decision_130_Notification.docx"},
		{"two selected", DocSelection{GenTechDesc: true, GenDecision130: true}, "Documents.zip"},
		{"all selected", DocSelection{GenTechDesc: true, GenNonInsurance: true, GenDecision130: true}, "Documents.zip"},
		{"none selected", DocSelection{}, "Documents.zip"},
		{"facsimile does not count", DocSelection{GenTechDesc: true, AddFacsimile: true}, "Technical_Description.docx"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.sel.FallbackFilename(); got != tc.want {
				t.Fatalf("fallback = %q; want %q", got, tc.want)
			}
		})
	}
}

func TestPart_ShowsSpecs(t *testing.T) {
	t.Parallel()

	if (Part{ComponentType: "cnc"}).ShowsSpecs() {
		t.Fatal("cnc part with no specs should not show specs editor")
	}
	if !(Part{ComponentType: "electronics"}).ShowsSpecs() {
		t.Fatal("electronics part should always show specs editor")
	}
	p := Part{ComponentType: "generic", Specs: SpecMap{{Key: "k", Value: "v"}}}
	if !p.ShowsSpecs() {
		t.Fatal("part with specs should show specs editor")
	}
}

func TestUploadResponse_Decode(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"items": [{"designation":"АВП 25.01","name":"Втулка","material":"Сталь 45","weight":0.12,"dimensions":"25x10","found_in_db":true,"image_path":"parts/avp2501.png","quantity":4}],
		"metadata": {"supplier":"Dongguan","invoice_number":"INV-7","invoice_date":"2026-05-01"},
		"debug_info": {"method_used":"groq","token_usage":{"prompt_tokens":100,"total_tokens":150}}
	}`)
	var resp UploadResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("items = %d; want 1", len(resp.Items))
	}
	it := resp.Items[0]
	if !it.FoundInDB || it.Quantity != "4" || it.ImagePath == nil || *it.ImagePath != "parts/avp2501.png" {
		t.Fatalf("item decoded wrong: %+v", it)
	}
	if resp.Metadata == nil || resp.Metadata.Supplier != "Dongguan" {
		t.Fatalf("metadata decoded wrong: %+v", resp.Metadata)
	}
	if resp.DebugInfo == nil || resp.DebugInfo.TokenUsage.TotalTokens != 150 {
		t.Fatalf("debug info decoded wrong: %+v", resp.DebugInfo)
	}
}
