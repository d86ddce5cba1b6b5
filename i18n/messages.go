package i18n

// Status messages shown after a conversion or an explicit action.
const (
	MsgLearnedPattern     = "Using learned pattern (no AI needed)"
	MsgVerifying          = "Getting AI verification..."
	MsgHighConfidence     = "High confidence - using manual conversion"
	MsgManualOnly         = "Using manual conversion"
	MsgRuleVerified       = "Manual conversion verified ✓ - Pattern learned"
	MsgModelCorrection    = "AI correction applied - New pattern learned"
	MsgFallback           = "Using fallback conversion (Ollama unavailable)"
	MsgSameLanguage       = "Source and target languages are the same"
	MsgConversionComplete = "Conversion completed successfully!"
	MsgConversionFailed   = "Conversion failed. Please try again."
	MsgEmptySource        = "Please enter source code first"
	MsgTargetsMustDiffer  = "Target languages must be different from source"
	MsgBusy               = "A conversion is already in progress"
	MsgResetDone          = "Learning data reset successfully"
	MsgSettingsSaved      = "Settings saved"
	MsgModelAvailable     = "Ollama is available"
	MsgModelUnavailable   = "Ollama is not available at %s"
	MsgPatternsImported   = "Imported %d patterns (%d failed)"
)
