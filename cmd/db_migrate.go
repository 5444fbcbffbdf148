package cmd

import (
	"stablevault/pkg/sysversion"

	"github.com/fox-one/pkg/store/db"
	"github.com/spf13/cobra"
)

// command for migrating database
var migrateCmd = &cobra.Command{
	Use:     "migrate",
	Aliases: []string{"setdb"},
	Short:   "migrate database tables",
	Run: func(cmd *cobra.Command, args []string) {
		database := provideDatabase()
		if database == nil {
			cmd.PrintErrln("no database configured")
			return
		}
		defer database.Close()

		if err := db.Migrate(database); err != nil {
			cmd.PrintErrln("migrate database error:", err)
			return
		}

		if err := sysversion.Save(cmd.Context(), providePropertyStore(database)); err != nil {
			cmd.PrintErrln("save schema version error:", err)
			return
		}

		cmd.Println("migrated to schema version", sysversion.Current)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
