package ui

import "github.com/charmbracelet/lipgloss"

const ellipsis = "…"

var (
	normalDim = lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}
	gray      = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}
	midGray   = lipgloss.AdaptiveColor{Light: "#B2B2B2", Dark: "#4A4A4A"}
	fuchsia   = lipgloss.Color("#EE6FF8")
	red       = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	green     = lipgloss.Color("#04B575")

	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}

	logoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ECFD65")).
			Background(fuchsia).
			Bold(true).
			Render

	engineStyle = lipgloss.NewStyle().
			Foreground(statusBarNoteFg).
			Background(statusBarBg).
			Render

	labelStyle = lipgloss.NewStyle().
			Foreground(gray).
			Width(10).
			Render

	focusedLabelStyle = lipgloss.NewStyle().
				Foreground(fuchsia).
				Bold(true).
				Width(10).
				Render

	valueStyle = lipgloss.NewStyle().Render

	dimmedStyle = lipgloss.NewStyle().
			Foreground(midGray).
			Render

	subtleStyle = lipgloss.NewStyle().
			Foreground(normalDim).
			Render

	errorStyle = lipgloss.NewStyle().
			Foreground(red).
			Render

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render

	statusBarErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFDF5")).
				Background(red).
				Render

	playingStyle = lipgloss.NewStyle().
			Foreground(green).
			Render

	spinnerStyle = lipgloss.NewStyle().
			Foreground(fuchsia)
)

