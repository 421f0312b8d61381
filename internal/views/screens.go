package views

import (
	"fmt"
	"strings"
)

type SectionSummaryData struct {
	Title       string
	Percentage  int
	Completed   bool
	CompletedAt string
	Selected    bool
}

type HomePanelData struct {
	Date         string
	TableView    string
	Sections     []SectionSummaryData
	Overall      int
	OverallBar   string
	Suggested    string
	SuggestedKey string
}

type ItemData struct {
	ID        string
	Title     string
	Current   int
	Target    int
	Completed bool
}

type SectionPanelData struct {
	Title      string
	Percentage int
	Completed  bool
	ListView   string
	Items      []ItemData
	SelectedID string
}

type ItemDetailData struct {
	Title     string
	Text      string
	Reference string
	Current   int
	Target    int
}

type TasbihPanelData struct {
	Count        int
	Unit         int
	Percentage   int
	ProgressView string
	Completed    bool
	Total        int
	TotalTarget  int
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderHomePanel(data HomePanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("today: %s\n", data.Date))
	b.WriteString(fmt.Sprintf("overall: %s %d%%\n", data.OverallBar, data.Overall))
	if data.Suggested != "" {
		b.WriteString(fmt.Sprintf("suggested now: %s [%s]\n", data.Suggested, data.SuggestedKey))
	}
	b.WriteString("actions: [j/k]move [enter]open [1-5]views\n")
	if data.TableView != "" {
		b.WriteString(data.TableView + "\n")
		return strings.TrimSpace(b.String())
	}
	for _, s := range data.Sections {
		cursor := " "
		if s.Selected {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s %s %3d%%\n", cursor, completionBadge(s.Completed), s.Title, s.Percentage))
	}
	return strings.TrimSpace(b.String())
}

func RenderSectionPanel(data SectionPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s: %d%%", strings.ToLower(data.Title), data.Percentage))
	if data.Completed {
		b.WriteString(" (complete)")
	}
	b.WriteString("\n")
	b.WriteString("actions: [space]tap [j/k]move [r]reset item [R]reset section\n")
	if data.ListView != "" {
		b.WriteString(data.ListView + "\n")
		return strings.TrimSpace(b.String())
	}
	if len(data.Items) == 0 {
		b.WriteString("(no items)")
		return b.String()
	}
	for _, item := range data.Items {
		cursor := " "
		if item.ID == data.SelectedID {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s %s %d/%d\n", cursor, completionBadge(item.Completed), item.Title, item.Current, item.Target))
	}
	return strings.TrimSpace(b.String())
}

// ItemMarkdown is the detail pane source for one recitation.
func ItemMarkdown(data ItemDetailData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("## %s\n\n", data.Title))
	if data.Text != "" {
		b.WriteString(data.Text + "\n\n")
	}
	if data.Reference != "" {
		b.WriteString(fmt.Sprintf("_%s_\n\n", data.Reference))
	}
	b.WriteString(fmt.Sprintf("**%d / %d**\n", data.Current, data.Target))
	return b.String()
}

func RenderTasbihPanel(data TasbihPanelData) string {
	var b strings.Builder
	b.WriteString("tasbih prayer:\n")
	b.WriteString(fmt.Sprintf("count: %d / %d\n", data.Count, data.Unit))
	b.WriteString(fmt.Sprintf("progress: %s %d%%\n", data.ProgressView, data.Percentage))
	b.WriteString(fmt.Sprintf("prayer total: %d / %d\n", data.Total, data.TotalTarget))
	b.WriteString("actions: [space]tap [r]reset\n")
	if data.Completed {
		b.WriteString(completeStyle.Render("sequence complete, may it be accepted"))
	}
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("\ncommand: %s", inputView)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("\nhelp:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

func completionBadge(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}
