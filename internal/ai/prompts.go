package ai

import (
	"fmt"
	"strings"
)

func classifierInstructions(language string) string {
	return fmt.Sprintf(`You will receive a note in %s. Follow these instructions:

- Identify which list such a note should be added to
- If there is an existing related list, rename that list
- When creating a new list, avoid too generic names that will capture many notes
- When choosing an existing list, make sure the note fits the list's purpose
- Identify if the note should be split up into multiple actionable notes
- All note descriptions and list names should be in %s`, language, language)
}

func classifierPrompt(noteText string, lists []ListInfo) string {
	var b strings.Builder

	b.WriteString("This is the description of the note:\n\n")
	b.WriteString(noteText)
	b.WriteString("\n\nAnd the following lists are available:\n\n")

	for _, list := range lists {
		fmt.Fprintf(&b, "- %s : %s\n", list.Name, list.Description)
	}

	return b.String()
}

func summaryInstructions(language string) string {
	return fmt.Sprintf(`You are a family assistant. Please follow these instructions:

- You will get a list of notes that has been added by family members and you should give a brief summary of them
- Highlight notes that is considered an event
- The summary should be in %s and you should respond without a title to the summary
- End the response by writing some encouraging words to the family`, language)
}

func summaryPrompt(req SummaryRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "This is our family, written in %s:\n%s\n\n", req.OutputLanguage, req.FamilyDescription)
	fmt.Fprintf(&b, "Todays date is %s %s and this is the list of notes:\n\n",
		req.Today.Weekday().String(), req.Today.Format("2006-01-02"))

	for _, note := range req.Notes {
		b.WriteString(note.Description)
		if note.IsCompleted {
			b.WriteString(" (COMPLETED)")
		}
		b.WriteString("\n")
	}

	return b.String()
}
