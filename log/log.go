package log

import (
	"fmt"
	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"
	"os"
	"path/filepath"
)

// LogWriter implements an io.Writer that outputs to standard output and,
// once InitLogRotator has set LogRotator, to the log rotator as well.
type LogWriter struct{}

func (LogWriter) Write(p []byte) (n int, err error) {
	os.Stdout.Write(p)
	if LogRotator != nil {
		LogRotator.Write(p)
	}
	return len(p), nil
}

// Loggers per subsystem.  A single backend logger is created and all subsytem
// loggers created from it will write to the backend.  When adding new
// subsystems, add the subsystem logger variable here and to the
// SubsystemLoggers map.
//
// Until InitLogRotator has been called with a log file, loggers write to
// standard output only.  InitLogRotator should be called early during
// application startup, before loggers are used from other goroutines.
var (
	// backendLog is the logging backend used to create all subsystem loggers.
	// It writes through LogWriter.
	backendLog = btclog.NewBackend(LogWriter{})

	// LogRotator is one of the logging outputs.  It should be closed on
	// application shutdown.
	LogRotator *rotator.Rotator

	AdxrLog      = backendLog.Logger("ADXR")
	MmgrLog      = backendLog.Logger("AMGR")
	CmgrLog      = backendLog.Logger("CMGR")
	BcdbLog      = backendLog.Logger("BCDB")
	AcbcLog      = backendLog.Logger("ACBC")
	ChanLog      = backendLog.Logger("CHAN")
	DiscLog      = backendLog.Logger("DISC")
	IndxLog      = backendLog.Logger("INDX")
	MinrLog      = backendLog.Logger("MINR")
	PeerLog      = backendLog.Logger("PEER")
	RpcsLog      = backendLog.Logger("RPCS")
	ScrpLog      = backendLog.Logger("SCRP")
	SrvrLog      = backendLog.Logger("SRVR")
	SyncLog      = backendLog.Logger("SYNC")
	TxmpLog      = backendLog.Logger("TXMP")
	RPCCLientLog = backendLog.Logger("rpcclient")

	// PowxLog is the subsystem logger for the RandomX proof-of-work
	// engine (cache/dataset/VM lifecycle).
	PowxLog = backendLog.Logger("POWX")

	// DiffLog is the subsystem logger for the LWMA difficulty engine.
	DiffLog = backendLog.Logger("DIFF")
)

// SubsystemLoggers maps each subsystem identifier to its associated logger.
var SubsystemLoggers = map[string]btclog.Logger{
	"ADXR": AdxrLog,
	"AMGR": MmgrLog,
	"CMGR": CmgrLog,
	"BCDB": BcdbLog,
	"ACBC": AcbcLog,
	"CHAN": ChanLog,
	"DISC": DiscLog,
	"INDX": IndxLog,
	"MINR": MinrLog,
	"PEER": PeerLog,
	"RPCS": RpcsLog,
	"SCRP": ScrpLog,
	"SRVR": SrvrLog,
	"SYNC": SyncLog,
	"TXMP": TxmpLog,
	"POWX": PowxLog,
	"DIFF": DiffLog,

	"rpcclient": RPCCLientLog,
}

// InitLogRotator initializes the logging rotater to write logs to logFile and
// create roll files in the same directory.  It must be called before the
// package-global log rotater variables are used.
func InitLogRotator(logFile string) {
	fmt.Println(logFile)
	logDir, _ := filepath.Split(logFile)
	fmt.Println(logDir)
	err := os.MkdirAll(logDir, 0700)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory: %v\n", err)
		os.Exit(1)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create file rotator: %v\n", err)
		os.Exit(1)
	}

	LogRotator = r
}

// SetLogLevel sets the logging level for provided subsystem.  Subsystems not
// in SubsystemLoggers are ignored.
func SetLogLevel(subsystemID string, logLevel string) {
	// Ignore invalid subsystems.
	logger, ok := SubsystemLoggers[subsystemID]
	if !ok {
		return
	}

	// Defaults to info if the log level is invalid.
	level, _ := btclog.LevelFromString(logLevel)
	logger.SetLevel(level)
}

// SetLogLevels sets the log level for all subsystem loggers in
// SubsystemLoggers to the passed level.
func SetLogLevels(logLevel string) {
	// Configure all sub-systems with the new logging level.
	for subsystemID := range SubsystemLoggers {
		SetLogLevel(subsystemID, logLevel)
	}
}
