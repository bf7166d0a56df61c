package config

import (
	"fmt"
	"testing"

	"github.com/ghodss/yaml"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"

	"github.com/peripherylabs/agentsync/pkg/errors"
)

func TestParse(t *testing.T) {
	path := "."
	out := WorkspaceConfigName

	tests := []struct {
		name      string
		input     []byte
		expConfig Workspace
		expError  error
	}{
		{
			name:  "EmptyVersion",
			input: mustMarshal(Workspace{Interval: 15}),
			expConfig: Workspace{
				Version:  InitialConfigVersion,
				Interval: 15,
				Except:   alwaysIgnored,
				path:     out,
			},
		},
		{
			name: "CurrentVersion",
			input: mustMarshal(Workspace{
				Version: SupportedConfigVersion,
			}),
			expConfig: Workspace{
				Version: SupportedConfigVersion,
				Except:  alwaysIgnored,
				path:    out,
			},
		},
		{
			name: "NewerVersion",
			input: mustMarshal(Workspace{
				Version: "99.0",
			}),
			expError: errors.WithContext(incompatibleVersionError{
				path:      out,
				supported: SupportedConfigVersion,
				actual:    "99.0",
			}, "parse"),
		},
		{
			name: "GarbageVersion",
			input: mustMarshal(Workspace{
				Version: "not-a-version",
			}),
			expError: errors.WithContext(incompatibleVersionError{
				path:      out,
				supported: SupportedConfigVersion,
				actual:    "not-a-version",
			}, "parse"),
		},
		{
			name: "ExceptPatternsKept",
			input: mustMarshal(Workspace{
				Version: SupportedConfigVersion,
				Except:  []string{"node_modules", "*.log"},
			}),
			expConfig: Workspace{
				Version: SupportedConfigVersion,
				Except:  append([]string{"node_modules", "*.log"}, alwaysIgnored...),
				path:    out,
			},
		},
		{
			name: "ExtraFields",
			input: []byte(fmt.Sprintf(
				"version: %q\nextra: fields", SupportedConfigVersion)),
			expError: errors.WithContext(
				errors.NewFriendlyError(parseConfigErrTemplate, out,
					errors.New("error unmarshaling JSON: while decoding JSON: "+
						`json: unknown field "extra"`)),
				"parse"),
		},
	}

	fs = afero.NewMemMapFs()
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			err := afero.WriteFile(fs, out, test.input, 0644)
			assert.NoError(t, err)
			config, err := Parse(path)
			assert.Equal(t, test.expConfig, config)
			assert.Equal(t, test.expError, err)
		})
	}
}

func TestParseMissingConfig(t *testing.T) {
	fs = afero.NewMemMapFs()
	_, err := Parse("/empty")
	assert.Equal(t, errors.FileNotFound{
		Path: "/empty/" + WorkspaceConfigName,
	}, errors.RootCause(err))
}

func TestIgnored(t *testing.T) {
	workspace := Default()
	workspace.Except = append(workspace.Except, "node_modules", "*.log")

	tests := []struct {
		path string
		exp  bool
	}{
		{"src/main.go", false},
		{".git/HEAD", true},
		{"src/node_modules/pkg/index.js", true},
		{"build/output.log", true},
		{"logs.txt", false},
		{WorkspaceConfigName, true},
	}

	for _, test := range tests {
		test := test
		t.Run(test.path, func(t *testing.T) {
			assert.Equal(t, test.exp, workspace.Ignored(test.path))
		})
	}
}

func mustMarshal(cfg interface{}) []byte {
	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		panic(fmt.Errorf("bad test input, unable to marshal to yaml: %s", err))
	}
	return yamlBytes
}
