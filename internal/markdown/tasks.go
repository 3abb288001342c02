package markdown

import "strings"

// Task is a line of note text that reads like an actionable item.
type Task struct {
	Line int    `json:"line"`
	Text string `json:"text"`
}

// taskPrefixes mark a line as a task when it starts with one of them
var taskPrefixes = []string{
	"todo", "to do", "to-do", "[ ]", "[]", "- [ ]", "* [ ]",
}

// taskKeywords mark a line as a task when it contains one of them
var taskKeywords = []string{
	"need to ", "needs to ", "have to ", "must ",
	"remember to ", "don't forget", "do not forget",
	"follow up", "followup",
}

// DetectTasks scans flattened note text and returns the lines that
// carry task intent, with their zero-based line numbers. Stateless
// keyword matching, no NLP.
func DetectTasks(plainText string) []Task {
	var tasks []Task
	for i, line := range strings.Split(plainText, "\n") {
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		if hasTaskIntent(text) {
			tasks = append(tasks, Task{Line: i, Text: text})
		}
	}
	return tasks
}

func hasTaskIntent(line string) bool {
	lower := strings.ToLower(line)
	for _, prefix := range taskPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	for _, kw := range taskKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
