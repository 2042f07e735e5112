// Package service installs sleuth's watch mode as a macOS launchd
// login agent.
package service

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/joho/godotenv"

	"github.com/marta/sleuth/config"
)

const (
	label   = "com.sleuth.agent"
	binDest = "/usr/local/bin/sleuth"
)

// agentPaths locates everything launchd needs under the user's home.
type agentPaths struct {
	plist     string
	stdoutLog string
	stderrLog string
}

func homePaths() agentPaths {
	home, _ := os.UserHomeDir()
	return agentPaths{
		plist:     filepath.Join(home, "Library", "LaunchAgents", label+".plist"),
		stdoutLog: filepath.Join(home, "Library", "Logs", "sleuth-stdout.log"),
		stderrLog: filepath.Join(home, "Library", "Logs", "sleuth-stderr.log"),
	}
}

// Install copies the binary to /usr/local/bin, seeds ~/.sleuth/config
// from .env if needed, and loads a launchd agent that runs watch mode.
func Install() error {
	if err := installBinary(); err != nil {
		return err
	}
	if err := seedConfig(); err != nil {
		return err
	}

	p := homePaths()
	plist, err := renderPlist(p, resolveWorkDir())
	if err != nil {
		return fmt.Errorf("generating plist: %w", err)
	}

	// Replace whatever was loaded before (ignore errors)
	if _, err := os.Stat(p.plist); err == nil {
		_ = launchctl("unload", p.plist)
	}
	if err := os.MkdirAll(filepath.Dir(p.plist), 0755); err != nil {
		return fmt.Errorf("creating LaunchAgents dir: %w", err)
	}
	if err := os.WriteFile(p.plist, []byte(plist), 0644); err != nil {
		return fmt.Errorf("writing plist: %w", err)
	}
	fmt.Printf("wrote plist to %s\n", p.plist)

	if err := launchctl("load", p.plist); err != nil {
		return fmt.Errorf("loading plist: %w", err)
	}
	fmt.Println("service loaded and will start watching on login")
	return nil
}

func installBinary() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return fmt.Errorf("resolving symlinks: %w", err)
	}
	data, err := os.ReadFile(exe)
	if err != nil {
		return fmt.Errorf("reading binary: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(binDest), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(binDest), err)
	}
	if err := os.WriteFile(binDest, data, 0755); err != nil {
		return fmt.Errorf("copying binary to %s: %w", binDest, err)
	}
	fmt.Printf("installed binary to %s\n", binDest)
	return nil
}

// seedConfig copies .env into ~/.sleuth/config the first time, so the
// agent keeps its credentials after the checkout directory is gone.
func seedConfig() error {
	configFile := config.ConfigFile()
	if _, err := os.Stat(configFile); err == nil {
		fmt.Printf("config already exists at %s\n", configFile)
		return nil
	}
	envData, err := os.ReadFile(".env")
	if err != nil {
		return nil
	}
	if err := os.MkdirAll(config.ConfigDir(), 0700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(configFile, envData, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Printf("seeded config from .env -> %s\n", configFile)
	return nil
}

// resolveWorkDir picks the working directory for the launchd agent. A
// relative DATABASE_PATH in the runtime config means the working
// directory matters, so the directory install ran from wins; otherwise
// ~/.sleuth is used.
func resolveWorkDir() string {
	envVars, _ := godotenv.Read(config.ConfigFile())
	if dbPath, ok := envVars["DATABASE_PATH"]; ok && !filepath.IsAbs(dbPath) {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return config.ConfigDir()
}

// Uninstall unloads the agent and removes the plist and the binary.
func Uninstall() error {
	p := homePaths()
	if _, err := os.Stat(p.plist); err == nil {
		if err := launchctl("unload", p.plist); err != nil {
			fmt.Fprintf(os.Stderr, "warning: unload failed: %v\n", err)
		}
		if err := os.Remove(p.plist); err != nil {
			return fmt.Errorf("removing plist: %w", err)
		}
		fmt.Printf("removed %s\n", p.plist)
	} else {
		fmt.Println("plist not found, skipping")
	}

	if _, err := os.Stat(binDest); err == nil {
		if err := os.Remove(binDest); err != nil {
			return fmt.Errorf("removing binary: %w", err)
		}
		fmt.Printf("removed %s\n", binDest)
	} else {
		fmt.Println("binary not found in /usr/local/bin, skipping")
	}

	fmt.Println("uninstalled")
	return nil
}

func Start() error {
	return launchctl("start", label)
}

func Stop() error {
	return launchctl("stop", label)
}

func Restart() error {
	_ = Stop()
	return Start()
}

func Status() error {
	cmd := exec.Command("launchctl", "list", label)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Println("service is not loaded")
	}
	return nil
}

// Logs tails both stdout and stderr log files.
func Logs() error {
	p := homePaths()
	cmd := exec.Command("tail", "-f", p.stdoutLog, p.stderrLog)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func launchctl(args ...string) error {
	cmd := exec.Command("launchctl", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("launchctl %s: %s", strings.Join(args, " "), strings.TrimSpace(stderr.String()))
	}
	return nil
}

var plistTemplate = template.Must(template.New("plist").Parse(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>{{.Label}}</string>
	<key>ProgramArguments</key>
	<array>
		<string>{{.BinPath}}</string>
		<string>watch</string>
	</array>
	<key>WorkingDirectory</key>
	<string>{{.WorkDir}}</string>
	<key>RunAtLoad</key>
	<true/>
	<key>KeepAlive</key>
	<true/>
	<key>ProcessType</key>
	<string>Background</string>
	<key>StandardOutPath</key>
	<string>{{.StdoutLog}}</string>
	<key>StandardErrorPath</key>
	<string>{{.StderrLog}}</string>
</dict>
</plist>
`))

type plistData struct {
	Label     string
	BinPath   string
	WorkDir   string
	StdoutLog string
	StderrLog string
}

func renderPlist(p agentPaths, workDir string) (string, error) {
	var buf bytes.Buffer
	err := plistTemplate.Execute(&buf, plistData{
		Label:     label,
		BinPath:   binDest,
		WorkDir:   workDir,
		StdoutLog: p.stdoutLog,
		StderrLog: p.stderrLog,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
