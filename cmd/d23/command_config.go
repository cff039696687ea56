package main

import (
	"encoding/json"
	"errors"
	"flag"
	"io"
	"strings"

	"d23/internal/config"

	toml "github.com/pelletier/go-toml/v2"
)

type ConfigCommand struct {
	stdout io.Writer
	stderr io.Writer
}

const (
	configFormatJSON = "json"
	configFormatTOML = "toml"

	configScopeCore = "core"
	configScopeUI   = "ui"
)

type configOutput struct {
	CoreConfigPath string                   `json:"core_config_path,omitempty" toml:"core_config_path,omitempty"`
	UIConfigPath   string                   `json:"ui_config_path,omitempty" toml:"ui_config_path,omitempty"`
	Backend        *effectiveBackendConfig  `json:"backend,omitempty" toml:"backend,omitempty"`
	Logging        *effectiveLoggingConfig  `json:"logging,omitempty" toml:"logging,omitempty"`
	Storage        *effectiveStorageConfig  `json:"storage,omitempty" toml:"storage,omitempty"`
	History        *effectiveHistoryConfig  `json:"history,omitempty" toml:"history,omitempty"`
	Location       *effectiveLocationConfig `json:"location,omitempty" toml:"location,omitempty"`
	Chat           *effectiveChatConfig     `json:"chat,omitempty" toml:"chat,omitempty"`
}

type coreConfigOutput struct {
	Backend  effectiveBackendConfig  `json:"backend" toml:"backend"`
	Logging  effectiveLoggingConfig  `json:"logging" toml:"logging"`
	Storage  effectiveStorageConfig  `json:"storage" toml:"storage"`
	History  effectiveHistoryConfig  `json:"history" toml:"history"`
	Location effectiveLocationConfig `json:"location" toml:"location"`
}

type uiConfigOutput struct {
	Chat effectiveChatConfig `json:"chat" toml:"chat"`
}

type effectiveBackendConfig struct {
	Address string `json:"address" toml:"address"`
	BaseURL string `json:"base_url" toml:"base_url"`
}

type effectiveLoggingConfig struct {
	Level string `json:"level" toml:"level"`
}

type effectiveStorageConfig struct {
	Backend string `json:"backend" toml:"backend"`
}

type effectiveHistoryConfig struct {
	PageSize int `json:"page_size" toml:"page_size"`
}

type effectiveLocationConfig struct {
	Latitude   *float64 `json:"latitude,omitempty" toml:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty" toml:"longitude,omitempty"`
	Configured bool     `json:"configured" toml:"configured"`
}

type effectiveChatConfig struct {
	Timestamps bool `json:"timestamps" toml:"timestamps"`
	Markdown   bool `json:"markdown" toml:"markdown"`
}

func NewConfigCommand(stdout, stderr io.Writer) *ConfigCommand {
	return &ConfigCommand{
		stdout: stdout,
		stderr: stderr,
	}
}

func (c *ConfigCommand) Run(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	defaults := fs.Bool("default", false, "print default config values")
	format := fs.String("format", configFormatJSON, "output format: json|toml")
	var scopes stringList
	fs.Var(&scopes, "scope", "scope to print: core|ui|all (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resolvedFormat, err := resolveConfigFormat(*format)
	if err != nil {
		return err
	}
	resolvedScopes, err := resolveConfigScopes(scopes)
	if err != nil {
		return err
	}
	payload, err := c.buildOutput(*defaults, resolvedScopes)
	if err != nil {
		return err
	}
	return writeConfigOutput(c.stdout, resolvedFormat, projectedConfigPayload(payload, resolvedScopes))
}

func (c *ConfigCommand) buildOutput(defaults bool, scopes map[string]struct{}) (configOutput, error) {
	out := configOutput{}

	if scopeSelected(scopes, configScopeCore) {
		corePath, err := config.CoreConfigPath()
		if err != nil {
			return configOutput{}, err
		}
		var coreCfg config.CoreConfig
		if defaults {
			coreCfg = config.DefaultCoreConfig()
		} else {
			coreCfg, err = config.LoadCoreConfig()
			if err != nil {
				return configOutput{}, err
			}
		}
		out.CoreConfigPath = corePath
		out.Backend = &effectiveBackendConfig{
			Address: coreCfg.Backend.Address,
			BaseURL: coreCfg.BackendBaseURL(),
		}
		out.Logging = &effectiveLoggingConfig{
			Level: coreCfg.LogLevel(),
		}
		out.Storage = &effectiveStorageConfig{
			Backend: coreCfg.StorageBackend(),
		}
		out.History = &effectiveHistoryConfig{
			PageSize: coreCfg.HistoryPageSize(),
		}
		location := &effectiveLocationConfig{}
		if latitude, longitude, ok := coreCfg.LocationCoordinates(); ok {
			location.Latitude = &latitude
			location.Longitude = &longitude
			location.Configured = true
		}
		out.Location = location
	}

	if scopeSelected(scopes, configScopeUI) {
		uiPath, err := config.UIConfigPath()
		if err != nil {
			return configOutput{}, err
		}
		var uiCfg config.UIConfig
		if defaults {
			uiCfg = config.DefaultUIConfig()
		} else {
			uiCfg, err = config.LoadUIConfig()
			if err != nil {
				return configOutput{}, err
			}
		}
		out.UIConfigPath = uiPath
		out.Chat = &effectiveChatConfig{
			Timestamps: uiCfg.ShowTimestamps(),
			Markdown:   uiCfg.RenderMarkdown(),
		}
	}

	return out, nil
}

func writeConfigOutput(out io.Writer, format string, payload any) error {
	switch format {
	case configFormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	case configFormatTOML:
		data, err := toml.Marshal(payload)
		if err != nil {
			return err
		}
		if len(data) == 0 || data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
		_, err = out.Write(data)
		return err
	default:
		return errors.New("unsupported format")
	}
}

func projectedConfigPayload(payload configOutput, scopes map[string]struct{}) any {
	if len(scopes) != 1 {
		return payload
	}
	if scopeSelected(scopes, configScopeUI) {
		out := uiConfigOutput{}
		if payload.Chat != nil {
			out.Chat = *payload.Chat
		}
		return out
	}
	if scopeSelected(scopes, configScopeCore) {
		out := coreConfigOutput{}
		if payload.Backend != nil {
			out.Backend = *payload.Backend
		}
		if payload.Logging != nil {
			out.Logging = *payload.Logging
		}
		if payload.Storage != nil {
			out.Storage = *payload.Storage
		}
		if payload.History != nil {
			out.History = *payload.History
		}
		if payload.Location != nil {
			out.Location = *payload.Location
		}
		return out
	}
	return payload
}

func resolveConfigFormat(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", configFormatJSON:
		return configFormatJSON, nil
	case configFormatTOML:
		return configFormatTOML, nil
	default:
		return "", errors.New("invalid format: must be json or toml")
	}
}

func resolveConfigScopes(values []string) (map[string]struct{}, error) {
	if len(values) == 0 {
		return map[string]struct{}{
			configScopeCore: {},
			configScopeUI:   {},
		}, nil
	}
	out := map[string]struct{}{}
	for _, raw := range values {
		parts := strings.Split(raw, ",")
		for _, part := range parts {
			scope, err := normalizeConfigScope(part)
			if err != nil {
				return nil, err
			}
			if scope == "all" {
				return map[string]struct{}{
					configScopeCore: {},
					configScopeUI:   {},
				}, nil
			}
			out[scope] = struct{}{}
		}
	}
	return out, nil
}

func normalizeConfigScope(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "all":
		return "all", nil
	case configScopeCore, "backend":
		return configScopeCore, nil
	case configScopeUI:
		return configScopeUI, nil
	default:
		return "", errors.New("invalid scope: must be core, ui, or all")
	}
}

func scopeSelected(scopes map[string]struct{}, scope string) bool {
	_, ok := scopes[scope]
	return ok
}
