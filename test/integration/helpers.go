//go:build integration

package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
	"github.com/fivetwenty-io/stripe-client/pkg/stripeclient"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	APIKey     string
	APIBase    string
	BinaryPath string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		APIKey:     os.Getenv("STRIPE_TEST_API_KEY"),
		APIBase:    os.Getenv("STRIPE_TEST_API_BASE"),
		BinaryPath: getBinaryPath(),
		Verbose:    os.Getenv("STRIPE_VERBOSE") == "true",
	}
}

// getBinaryPath determines the path to the stripe CLI binary.
func getBinaryPath() string {
	if path := os.Getenv("STRIPE_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../stripe", "./stripe", "../stripe"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "stripe"
}

// SkipIfMissingConfig skips the test unless a test-mode key is configured.
// Live keys are refused so the suite can never move real money.
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.APIKey == "" {
		t.Skip("STRIPE_TEST_API_KEY not set, skipping integration test")
	}

	if !strings.HasPrefix(config.APIKey, "sk_test_") && !strings.HasPrefix(config.APIKey, "rk_test_") {
		t.Skip("STRIPE_TEST_API_KEY is not a test mode key, skipping integration test")
	}
}

// SkipIfMissingBinary skips CLI tests when the binary has not been built.
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(config.BinaryPath); err != nil {
		t.Skipf("stripe binary not found at %s, skipping integration test", config.BinaryPath)
	}
}

// NewClient builds a library client for the configured account.
func (config *TestConfig) NewClient(t *testing.T) stripe.Client {
	t.Helper()

	client, err := stripeclient.New(&stripe.Config{
		APIKey:          config.APIKey,
		APIBase:         config.APIBase,
		UserAgentSuffix: "integration-tests",
	})
	require.NoError(t, err)

	return client
}

// CommandRunner runs the stripe CLI against the configured account.
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
	home   string
}

// NewCommandRunner creates a runner with an isolated HOME directory.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{config: config, t: t, home: t.TempDir()}
}

// Run executes a stripe command and returns its output.
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	// #nosec G204 -- the binary path comes from the test environment
	cmd := exec.Command(runner.config.BinaryPath, args...)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Env = append(os.Environ(),
		"HOME="+runner.home,
		"STRIPE_API_KEY="+runner.config.APIKey,
		"STRIPE_API_BASE="+runner.config.APIBase,
	)

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// GenerateTestName creates a unique name for test resources and resume keys.
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
