package command

import "strings"

// Command is a single discrete scale adjustment, produced once per recognized
// trigger and consumed immediately by the router.
type Command string

const (
	Increase Command = "increase"
	Decrease Command = "decrease"
	None     Command = "none"
)

// Source identifies which trigger produced a command. Each source carries its
// own step size and bounds policy.
type Source string

const (
	SourceButton Source = "button"
	SourceVoice  Source = "voice"
	SourceMotion Source = "motion"
)

// Parse maps a transcript to a command by substring containment on the
// lowercased text. "increase" is checked first, so a transcript holding both
// words yields Increase.
func Parse(transcript string) Command {
	text := strings.ToLower(transcript)

	if strings.Contains(text, string(Increase)) {
		return Increase
	}

	if strings.Contains(text, string(Decrease)) {
		return Decrease
	}

	return None
}
