package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ghissues/internal/utils"
)

const (
	testCaseDebugStructuredConstant   = "debug_structured"
	testCaseInfoConsoleConstant       = "info_console"
	testCaseWarnStructuredConstant    = "warn_structured"
	testCaseErrorConsoleConstant      = "error_console"
	testCaseUnknownLevelConstant      = "unknown_level_rejected"
	testCaseUnknownFormatConstant     = "unknown_format_rejected"
	testUnknownLogLevelValueConstant  = "verbose"
	testUnknownLogFormatValueConstant = "plain"
	testUnsupportedLevelSubstring     = "unsupported log level"
	testUnsupportedLogFormatSubstring = "unsupported log format"
)

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name            string
		logLevel        utils.LogLevel
		logFormat       utils.LogFormat
		expectedFailure string
	}{
		{name: testCaseDebugStructuredConstant, logLevel: utils.LogLevelDebug, logFormat: utils.LogFormatStructured},
		{name: testCaseInfoConsoleConstant, logLevel: utils.LogLevelInfo, logFormat: utils.LogFormatConsole},
		{name: testCaseWarnStructuredConstant, logLevel: utils.LogLevelWarn, logFormat: utils.LogFormatStructured},
		{name: testCaseErrorConsoleConstant, logLevel: utils.LogLevelError, logFormat: utils.LogFormatConsole},
		{
			name:            testCaseUnknownLevelConstant,
			logLevel:        utils.LogLevel(testUnknownLogLevelValueConstant),
			logFormat:       utils.LogFormatStructured,
			expectedFailure: testUnsupportedLevelSubstring,
		},
		{
			name:            testCaseUnknownFormatConstant,
			logLevel:        utils.LogLevelInfo,
			logFormat:       utils.LogFormat(testUnknownLogFormatValueConstant),
			expectedFailure: testUnsupportedLogFormatSubstring,
		},
	}

	loggerFactory := utils.NewLoggerFactory()
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			logger, creationError := loggerFactory.CreateLogger(testCase.logLevel, testCase.logFormat)
			if len(testCase.expectedFailure) > 0 {
				require.Error(testInstance, creationError)
				require.Contains(testInstance, creationError.Error(), testCase.expectedFailure)
				require.Nil(testInstance, logger)
				return
			}

			require.NoError(testInstance, creationError)
			require.NotNil(testInstance, logger)
		})
	}
}
