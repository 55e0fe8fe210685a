package model

import (
	"encoding/json"
	"testing"
)

func TestTrendingItemsAcceptsStringsAndExamples(t *testing.T) {
	body := `{"user_input":"hi","user_context":{"trending_content":[
		"latte art fail",
		{"content":"5am routine","platform":"tiktok","category":"lifestyle","hashtags":["morning"]}
	]}}`
	var req ChatRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatal(err)
	}
	got := req.UserContext.TrendingContent
	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}
	if got[0] != "latte art fail" {
		t.Errorf("item 0 = %q", got[0])
	}
	if want := "(tiktok, lifestyle) 5am routine #morning"; got[1] != want {
		t.Errorf("item 1 = %q, want %q", got[1], want)
	}
}

func TestTrendingItemsRejectsNonArray(t *testing.T) {
	var req ChatRequest
	if err := json.Unmarshal([]byte(`{"user_context":{"trending_content":"x"}}`), &req); err == nil {
		t.Error("expected an error for a non-array trending_content")
	}
	if err := json.Unmarshal([]byte(`{"user_context":{"trending_content":null}}`), &req); err != nil {
		t.Errorf("null should be accepted: %v", err)
	}
}
