package install

import (
	"encoding/json"
	"f1timing/internal/global"
	"f1timing/internal/server"
	"fmt"
	"os"

	"golang.org/x/term"
)

func installConfig() (err error) {
	configFilePath := global.DefaultConfigPath

	// Don't overwrite existing
	_, err = os.Stat(configFilePath)
	if err == nil {
		// No terminal - no overwrite
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Printf("Existing configuration file present, not overwriting\n")
			return
		}

		question := fmt.Sprintf("Configuration file already exists at '%s'. Overwrite it?", configFilePath)
		if !confirm(os.Stdin, os.Stdout, question) {
			fmt.Printf("Not overwriting configuration file\n")
			return
		}
	}

	err = CreateTemplateConfig(configFilePath)
	if err != nil {
		return
	}

	fmt.Printf("Successfully wrote template configuration file to '%s'\n", configFilePath)
	fmt.Printf("  IMPORTANT: set the account password with %s in /etc/default/f1timing\n", global.PasswordEnvVar)
	return
}

func uninstallConfig() (err error) {
	err = os.Remove(global.DefaultConfigPath)
	if err != nil && !os.IsNotExist(err) {
		return
	}
	err = nil

	fmt.Printf("Successfully removed configuration file '%s'\n", global.DefaultConfigPath)
	return
}

// Template server configuration with every default spelled out
func TemplateConfig() (newCfg server.JSONConfig) {
	newCfg.Network.Address = global.DefaultProxyAddress
	newCfg.Network.Port = global.DefaultProxyPort
	newCfg.Network.Backlog = global.DefaultProxyBacklog
	newCfg.Network.AcceptBurst = global.DefaultAcceptBurst

	newCfg.Upstream.Username = "user@example.com"
	newCfg.Upstream.Lazy = true
	newCfg.Upstream.SeedStorePath = global.DefaultSeedStorePath
	newCfg.Upstream.ConnectTimeout = global.DefaultConnectTimeout.String()

	newCfg.Sessions.BufferSize = global.DefaultSessionBufferSize
	newCfg.Sessions.WriteTimeout = global.DefaultSessionWriteTimeout.String()

	newCfg.Metrics.Interval = global.DefaultMetricInterval.String()
	newCfg.Metrics.MaxAge = global.DefaultMetricRetention.String()
	newCfg.Metrics.QueryServerPort = global.HTTPListenPort
	return
}

func CreateTemplateConfig(filepath string) (err error) {
	if filepath == "" {
		err = fmt.Errorf("specify template file path via the --config/-c arguments")
		return
	}

	newConfFile, err := os.OpenFile(filepath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer newConfFile.Close()

	confBytes, err := json.MarshalIndent(TemplateConfig(), "", "  ")
	if err != nil {
		err = fmt.Errorf("error marshaling new config: %w", err)
		return
	}
	confBytes = append(confBytes, []byte("\n")...)

	_, err = newConfFile.Write(confBytes)
	if err != nil {
		err = fmt.Errorf("failed to write config to file: %w", err)
		return
	}
	return
}
