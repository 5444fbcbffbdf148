package config

import (
	"stablevault/core"

	configUtil "github.com/fox-one/pkg/config"
)

// Load load config file
func Load(configFile string, config *core.Config) error {
	configUtil.AutomaticLoadEnv("STABLEVAULT")
	if err := configUtil.LoadYaml(configFile, config); err != nil {
		return err
	}

	defaultApp(&config.App)
	return nil
}

func defaultApp(app *core.App) {
	if app.CollateralAsset == "" {
		app.CollateralAsset = "wstETH"
	}

	if app.StableAsset == "" {
		app.StableAsset = "svUSD"
	}

	if app.BondAsset == "" {
		app.BondAsset = "ETH"
	}

	if app.SecondsPerBlock <= 0 {
		app.SecondsPerBlock = 12
	}
}
