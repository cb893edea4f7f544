// Package engines contains the synthesis backends used by the orchestrator.
// AzureEngine talks to the Azure Cognitive Services speech endpoint; the
// mock subpackage provides a scriptable engine for tests.
// Each engine implements tts.Synthesizer and tts.VoiceCatalog.
package engines
