package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/badmusic/internal/catalog"
	"github.com/desertthunder/badmusic/internal/formatter"
	"github.com/desertthunder/badmusic/internal/models"
	"github.com/desertthunder/badmusic/internal/shared"
)

const maxLyricLines = 12

func (m *Model) renderTabs() string {
	tabs := make([]string, 0, tabCount)
	for t := range tabCount {
		if t == m.tab {
			tabs = append(tabs, styles.activeTab.Render(t.String()))
		} else {
			tabs = append(tabs, styles.tab.Render(t.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// playable returns the active track and its audio URL when one resolves.
func (m *Model) playable() (*catalog.TrackMetadata, string, bool) {
	if m.active == nil {
		return nil, "", false
	}
	url, ok := m.deps.URLs.Load(m.active)
	return m.active, url, ok
}

// renderPlayerBar is empty unless the active track has a playable URL.
func (m *Model) renderPlayerBar() string {
	meta, _, ok := m.playable()
	if !ok {
		return ""
	}

	line := fmt.Sprintf("%s %s · %s  %s  %s",
		playIcon(m.state.IsPlaying),
		styles.ok.Render(meta.Title),
		meta.Author,
		shared.FormatDuration(meta.Duration),
		formatter.Plays(meta.Count),
	)
	if pos := m.queuePosition(); pos != "" {
		line += "  " + styles.help.Render(pos)
	}
	if m.state.IsSunoContext() {
		line += "  " + styles.help.Render("suno")
	}
	return styles.bar.Width(max(m.width-2, 0)).Render(line)
}

// renderExpanded draws the mobile-style player over the whole page.
func (m *Model) renderExpanded() string {
	var b strings.Builder

	_, url, ok := m.playable()
	switch {
	case m.state.ActiveTrackID == "":
		b.WriteString(styles.help.Render("Nothing queued"))
	case m.active == nil:
		b.WriteString(styles.help.Render("Loading " + m.state.ActiveTrackID + "…"))
	default:
		meta := m.active
		fmt.Fprintf(&b, "%s\n", styles.title.Render(meta.Title))
		fmt.Fprintf(&b, "%s\n\n", meta.Author)
		fmt.Fprintf(&b, "%s  %s  %s\n", playIcon(m.state.IsPlaying), shared.FormatDuration(meta.Duration), m.queuePosition())
		fmt.Fprintf(&b, "%s, %s\n", formatter.Plays(meta.Count), formatter.Likes(meta.LikeCount))
		if !ok {
			b.WriteString(styles.warn.Render("Audio unavailable") + "\n")
		} else {
			b.WriteString(styles.help.Render(url) + "\n")
		}
		if meta.Lyrics != "" {
			b.WriteString("\n" + clampLines(meta.Lyrics, maxLyricLines))
		}
	}

	return styles.expanded.Width(max(m.width-6, 0)).Render(b.String())
}

func (m *Model) renderDetail() string {
	meta := m.detail
	url, _ := m.deps.URLs.Load(meta)

	var b strings.Builder
	if meta.Ref.Catalog != models.CatalogGenerated {
		b.Write(formatter.Detail(meta, url))
		return b.String()
	}

	fmt.Fprintf(&b, "%s\n", styles.title.Render(meta.Title))
	fmt.Fprintf(&b, "by %s · %s · %s\n", meta.Author, shared.FormatDuration(meta.Duration), formatter.Plays(meta.Count))
	if len(meta.Genres) > 0 {
		fmt.Fprintf(&b, "%s\n", styles.help.Render(strings.Join(meta.Genres, ", ")))
	}
	if m.wave.CurrentSongID == meta.Ref.ID {
		fmt.Fprintf(&b, "Preview: %s\n", playIcon(m.wave.IsPlaying))
	}
	b.WriteString("\n")

	lyrics, similar := styles.tab, styles.tab
	if m.detailTab == LyricsTab {
		lyrics = styles.activeTab
	} else {
		similar = styles.activeTab
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, lyrics.Render("Lyrics"), similar.Render("Similar")))
	b.WriteString("\n\n")

	switch m.detailTab {
	case LyricsTab:
		if meta.Lyrics == "" {
			b.WriteString(styles.help.Render("No lyrics"))
		} else {
			b.WriteString(strings.TrimSpace(meta.Lyrics))
		}
	case SimilarTab:
		if len(m.similar) == 0 {
			b.WriteString(styles.help.Render("No similar songs"))
		}
		for _, s := range m.similar {
			fmt.Fprintf(&b, "• %s · %s  %s\n", s.Title, s.Author, formatter.Plays(s.Count))
		}
	}
	return b.String()
}

// queuePosition renders "n/total" for the active track, or "" when it is not queued.
func (m *Model) queuePosition() string {
	for i, id := range m.state.ActiveTrackIDs {
		if id == m.state.ActiveTrackID {
			return fmt.Sprintf("%d/%d", i+1, len(m.state.ActiveTrackIDs))
		}
	}
	return ""
}

func playIcon(playing bool) string {
	if playing {
		return "▶"
	}
	return "⏸"
}

func clampLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) <= n {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[:n], "\n") + "\n…"
}
