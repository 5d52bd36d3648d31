package main

import (
	"charm-dapp-wallet/styles"

	"github.com/charmbracelet/lipgloss"
)

// -------------------- THEME (Lip Gloss) --------------------
// Styles now come from the styles package

var (
	cBg      = styles.CBg
	cBorder  = styles.CBorder
	cMuted   = styles.CMuted
	cText    = styles.CText
	cAccent  = styles.CAccent
	cAccent2 = styles.CAccent2
	cWarn    = styles.CWarn

	appStyle    = styles.AppStyle
	panelStyle  = styles.PanelStyle
	hotkeyStyle = lipgloss.NewStyle().Foreground(styles.CMuted)
)
