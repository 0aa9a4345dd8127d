package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"rulecraft/engine/pkg/cli"
	"rulecraft/engine/pkg/config"
	"rulecraft/engine/pkg/rule/engine"
	"rulecraft/engine/pkg/rule/validate"
)

// cliResult is the JSON/text payload rulectl prints: the engine's Result
// plus an invocation-scoped operation ID for correlating this CLI run with
// logs, independent of the engine's own per-evaluation operation ID.
type cliResult struct {
	OperationID string `json:"operation_id"`
	*engine.Result
}

// validationOutput is what --validate-only prints.
type validationOutput struct {
	OperationID string   `json:"operation_id"`
	Valid       bool     `json:"valid"`
	Errors      []string `json:"errors,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}

func runRule(cmd *cobra.Command, args []string) error {
	operationID := uuid.NewString()

	ruleBytes, err := os.ReadFile(flags.rule)
	if err != nil {
		return cli.NewIOError(flags.rule, err)
	}
	ruleText := string(ruleBytes)

	cfg, err := loadEngineConfig(flags.configFile)
	if err != nil {
		return cli.NewIOError(flags.configFile, err)
	}

	eng, err := engine.New(cfg, engine.Dependencies{})
	if err != nil {
		return fmt.Errorf("constructing engine: %w", err)
	}

	formatter := cli.NewFormatter(flags.format)

	if flags.validateOnly {
		report := eng.Validate(ruleText)
		failed := report.Status == validate.StatusError || report.Status == validate.StatusCriticalError
		out := validationOutput{OperationID: operationID, Valid: !failed}
		for _, issue := range report.Issues {
			line := fmt.Sprintf("[%s] %s", issue.Code, issue.Message)
			if issue.Severity == validate.SeverityWarning || issue.Severity == validate.SeverityInfo {
				out.Warnings = append(out.Warnings, line)
			} else {
				out.Errors = append(out.Errors, line)
			}
		}
		if err := formatter.FormatTo(os.Stdout, out); err != nil {
			return fmt.Errorf("formatting output: %w", err)
		}
		if !out.Valid {
			return cli.NewValidationError(flags.rule, strings.Join(out.Errors, "; "))
		}
		return nil
	}

	var inputs map[string]interface{}
	if err := json.Unmarshal([]byte(flags.input), &inputs); err != nil {
		return cli.NewIOError("--input", err)
	}

	result, err := eng.Evaluate(context.Background(), ruleText, inputs)
	if err != nil {
		return cli.NewEvaluationError(err)
	}

	out := cliResult{OperationID: operationID, Result: result}
	if err := formatter.FormatTo(os.Stdout, out); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	if !result.Success {
		return cli.NewEvaluationError(fmt.Errorf("%s", result.Error))
	}
	return nil
}

func loadEngineConfig(path string) (*config.EngineConfig, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadWithEnvOverrides(path)
}
