package pipeline

import (
	"github.com/xctask/xctask/internal/pipe/archive"
	"github.com/xctask/xctask/internal/pipe/build"
	"github.com/xctask/xctask/internal/pipe/coverage"
	"github.com/xctask/xctask/internal/pipe/export"
	"github.com/xctask/xctask/internal/pipe/sign"
	"github.com/xctask/xctask/internal/pipe/test"
	"github.com/xctask/xctask/pkg/task"
)

// ValidationPipes holds the check pipes of each task kind. They run before
// any xcodebuild process is started. The keychain check only runs when the
// context carries a keychain.
var ValidationPipes = map[task.Kind][]Piper{
	task.KindTest:    {test.CheckPipe{}},
	task.KindBuild:   {build.CheckPipe{}, sign.KeychainPipe{}},
	task.KindArchive: {archive.CheckPipe{}, sign.KeychainPipe{}},
	task.KindExport:  {export.CheckPipe{}, sign.KeychainPipe{}},
}

// ExecutionPipes holds the pipes that run each task kind.
var ExecutionPipes = map[task.Kind][]Piper{
	task.KindTest:  {test.Pipe{}},
	task.KindBuild: {build.Pipe{}},
	task.KindArchive: {
		archive.Pipe{},    // xcodebuild archive
		archive.ZipPipe{}, // dSYMs and .xcarchive zips
	},
	task.KindExport: {export.Pipe{}},
}

// CoveragePipes collects, writes and publishes a coverage report.
var CoveragePipes = []Piper{
	coverage.CheckPipe{},   // Validate coverage config, resolve base dir
	coverage.GcovPipe{},    // gcov -l over .gcda files
	coverage.ExtractPipe{}, // llvm-cov show to .gcov
	coverage.CollectPipe{}, // Parse .gcov files
	coverage.ReportPipe{},  // Add CI and git metadata, write JSON
	coverage.UploadPipe{},  // POST to the coverage service
	coverage.StatusPipe{},  // GitHub commit status
}
