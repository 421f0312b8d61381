package views

import (
	"strings"
	"testing"
)

func TestRenderSectionPanelMarksSelectionAndCompletion(t *testing.T) {
	out := RenderSectionPanel(SectionPanelData{
		Title:      "Morning remembrance",
		Percentage: 50,
		Items: []ItemData{
			{ID: "a", Title: "Ayat al-Kursi", Current: 0, Target: 1},
			{ID: "b", Title: "Al-Ikhlas", Current: 3, Target: 3, Completed: true},
		},
		SelectedID: "a",
	})
	for _, want := range []string{"morning remembrance: 50%", "> [ ] Ayat al-Kursi 0/1", "  [x] Al-Ikhlas 3/3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "(complete)") {
		t.Fatalf("section should not be marked complete:\n%s", out)
	}
}

func TestRenderHomePanelFallsBackToPlainRows(t *testing.T) {
	out := RenderHomePanel(HomePanelData{
		Date:         "2026-02-09",
		Overall:      25,
		OverallBar:   "[##--]",
		Suggested:    "Morning remembrance",
		SuggestedKey: "2",
		Sections: []SectionSummaryData{
			{Title: "Morning remembrance", Percentage: 100, Completed: true, Selected: true},
			{Title: "Evening remembrance"},
		},
	})
	for _, want := range []string{"today: 2026-02-09", "overall: [##--] 25%", "suggested now: Morning remembrance [2]", "> [x] Morning remembrance 100%", "  [ ] Evening remembrance   0%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestRenderTasbihPanelBanner(t *testing.T) {
	out := RenderTasbihPanel(TasbihPanelData{Count: 14, Unit: 15, Percentage: 93, Total: 14, TotalTarget: 300})
	if !strings.Contains(out, "count: 14 / 15") || strings.Contains(out, "sequence complete") {
		t.Fatalf("unexpected incomplete panel:\n%s", out)
	}
	out = RenderTasbihPanel(TasbihPanelData{Count: 15, Unit: 15, Percentage: 100, Completed: true, Total: 15, TotalTarget: 300})
	if !strings.Contains(out, "sequence complete") {
		t.Fatalf("expected completion banner:\n%s", out)
	}
}

func TestItemMarkdown(t *testing.T) {
	md := ItemMarkdown(ItemDetailData{Title: "Al-Falaq", Text: "qul a'udhu", Reference: "Abu Dawud 5082", Current: 1, Target: 3})
	for _, want := range []string{"## Al-Falaq", "qul a'udhu", "_Abu Dawud 5082_", "**1 / 3**"} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}
	if RenderMarkdown("   ") != "" {
		t.Fatal("expected empty render for blank markdown")
	}
}

func TestRenderAppWarningAndSinglePane(t *testing.T) {
	out := RenderApp(AppData{Header: "sakina", LeftPane: "left", StatusLine: "status: ok", Warning: "progress not saved"})
	if !strings.Contains(out, "warning: progress not saved") || !strings.Contains(out, "left") {
		t.Fatalf("unexpected app render:\n%s", out)
	}
}
