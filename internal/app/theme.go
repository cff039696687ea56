package app

import "github.com/charmbracelet/lipgloss"

const (
	chatBubblePaddingVertical   = 0
	chatBubblePaddingHorizontal = 1
)

var (
	headerStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	headerBadgeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dividerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	sidebarTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Bold(true)
	conversationStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	selectedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("236"))
	sidebarMetaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Faint(true)
	userBubbleStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Background(lipgloss.Color("236")).Padding(chatBubblePaddingVertical, chatBubblePaddingHorizontal)
	agentBubbleStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(chatBubblePaddingVertical, chatBubblePaddingHorizontal)
	errorBubbleStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("160")).Foreground(lipgloss.Color("203")).Padding(chatBubblePaddingVertical, chatBubblePaddingHorizontal)
	userStatusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true)
	chatMetaStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Faint(true)
	attachmentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("179"))
	promptLabelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("110")).Bold(true)
	confirmBorderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("208")).Padding(0, 2)
	confirmTitleStyle  = lipgloss.NewStyle().Bold(true)
	confirmButtonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	confirmActiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("239")).Bold(true)
	pickerTitleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Bold(true)
	pickerMatchStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("117")).Bold(true)
	toastInfoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("29")).Bold(true)
	toastWarningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("136")).Bold(true)
	toastErrorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("160")).Bold(true)
)
