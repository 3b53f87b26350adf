package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Title bar at the very top
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	endpointStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("189")).
			Background(lipgloss.Color("62"))

	// Topic input box; the border lights up when focused
	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238"))

	focusedBoxStyle = inputBoxStyle.
			BorderForeground(lipgloss.Color("62"))

	// Notes pane frame
	notesBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color("238"))

	focusedNotesStyle = notesBoxStyle.
				BorderForeground(lipgloss.Color("62"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 2)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	streamingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	stoppedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
	failedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	followStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
)
