package serve

import (
	"github.com/ValentinKolb/dDocs/cmd/util"
	"github.com/ValentinKolb/dDocs/rpc/common"
	"github.com/ValentinKolb/dDocs/rpc/server"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strings"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the in-memory development server",
		Long:    `Start the in-memory document server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is DDOCS_<flag> (e.g. DDOCS_ENDPOINT=0.0.0.0:9090). All data is lost when the process exits.`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", util.WrapString("The address on which the API will listen"))

	key = "credential"
	ServeCmd.PersistentFlags().String(key, "", util.WrapString("Access token required from clients (empty disables authentication)"))

	key = "hilo-capacity"
	ServeCmd.PersistentFlags().Uint64(key, 32, util.WrapString("Default identifier range size handed out per Hi-Lo request"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", util.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.Credential = viper.GetString("credential")
	serveCmdConfig.HiLoCapacity = viper.GetUint64("hilo-capacity")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	return nil
}

// run starts the document server
func run(_ *cobra.Command, _ []string) error {
	// configure the loggers
	common.InitLoggers(serveCmdConfig.LogLevel)

	server.Logger.Infof("%s", serveCmdConfig.String())

	return server.NewServer(*serveCmdConfig).Serve()
}

// initConfig reads in ENV variables if set.
func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("ddocs")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}
