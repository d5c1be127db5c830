package retrieval

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

const (
	ToolRepositoryInfo = "get_repo_info"
	ToolListContents   = "list_contents"
	ToolFileContent    = "get_file_content"
)

// Tool describes one retrieval operation to an agent that picks between them.
type Tool struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Operation   Operation          `json:"operation"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

// ToolParams is the argument object shared by every retrieval tool.
type ToolParams struct {
	GitHubURL string `json:"github_url,omitempty" jsonschema:"description=GitHub repository URL. May include /tree/<branch>/<path> or /blob/<branch>/<path>. Omit to use the repository last mentioned in the conversation."`
}

var toolOperations = map[string]Operation{
	ToolRepositoryInfo: OperationSummary,
	ToolListContents:   OperationTree,
	ToolFileContent:    OperationFile,
}

func Tools() []Tool {
	params := schemaFor(&ToolParams{})
	return []Tool{
		{
			Name:        ToolRepositoryInfo,
			Description: "Get repository metadata: description, size, stars, primary language, creation and last update time.",
			Operation:   OperationSummary,
			Parameters:  params,
		},
		{
			Name: ToolListContents,
			Description: `List the files and directories of a repository, three levels deep.
A URL pointing into a directory lists only that directory's contents.`,
			Operation:  OperationTree,
			Parameters: params,
		},
		{
			Name:        ToolFileContent,
			Description: "Get the contents of one file. The URL must point at the file, e.g. https://github.com/owner/repo/blob/main/README.md.",
			Operation:   OperationFile,
			Parameters:  params,
		},
	}
}

// ToolRequest turns a tool call into a retrieval request. Arguments is the
// JSON-encoded ToolParams, either as an object or as a JSON string holding
// the object the way chat completion tool calls carry it. Empty or null
// means no arguments.
func ToolRequest(name, arguments string) (Request, error) {
	op, ok := toolOperations[name]
	if !ok {
		return Request{}, fmt.Errorf("unknown tool %q", name)
	}

	params, err := parseToolParams(arguments)
	if err != nil {
		return Request{}, &Error{
			Kind:   KindInvalidReference,
			Detail: "invalid tool arguments",
			Err:    err,
		}
	}
	return Request{Operation: op, Locator: params.GitHubURL}, nil
}

func parseToolParams(arguments string) (ToolParams, error) {
	var params ToolParams
	raw := strings.TrimSpace(arguments)
	if strings.HasPrefix(raw, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(raw), &inner); err != nil {
			return params, fmt.Errorf("parse tool arguments: %w", err)
		}
		raw = strings.TrimSpace(inner)
	}
	if raw == "" || raw == "null" {
		return params, nil
	}
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return params, fmt.Errorf("parse tool arguments: %w", err)
	}
	return params, nil
}

func schemaFor(v any) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(v)
}
