package artifacts

// StatusNotifyMsg tells the app to show a message in the status bar.
type StatusNotifyMsg struct {
	Message string
}

// ExportRequestMsg asks the app to write every artifact to the export directory.
type ExportRequestMsg struct{}
