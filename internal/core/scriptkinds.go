package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/valter-silva-au/autospark/pkg/models"
)

var urlSchemes = []string{"http://", "https://", "ftp://", "file://"}

func hasURLScheme(url string) bool {
	lower := strings.ToLower(url)
	for _, s := range urlSchemes {
		if strings.HasPrefix(lower, s) {
			return true
		}
	}
	return false
}

func emitOpenURL(w *scriptWriter, _ int, t models.Task) error {
	url := strings.TrimSpace(t.Primary)
	w.raw("echo Opening URL in default web browser...")
	if !hasURLScheme(url) {
		w.raw("echo No protocol specified, using https:// by default")
		url = "https://" + url
	}
	w.raw(`start "" ` + quoteArg(url))
	w.raw("if errorlevel 1 (")
	w.raw("    echo ERROR: Failed to open URL.")
	w.raw("    echo URL: " + echoText(url))
	w.raw(") else (")
	w.raw("    echo Successfully opened URL: " + echoText(url))
	w.raw(")")
	return nil
}

// emitStart opens an application or file through the shell's default
// handler. The path is used verbatim.
func emitStart(w *scriptWriter, _ int, t models.Task) error {
	w.raw(`start "" ` + quoteArg(t.Primary))
	return nil
}

func emitCloseApp(w *scriptWriter, _ int, t models.Task) error {
	name := echoText(t.Primary)
	w.raw("taskkill /f /im " + quoteArg(t.Primary) + " >nul 2>&1")
	w.raw("if errorlevel 1 (echo Failed to close " + name + ") else (echo Successfully closed " + name + ")")
	return nil
}

func emitRunCommand(w *scriptWriter, _ int, t models.Task) error {
	w.raw(t.Primary)
	return nil
}

func emitDelay(w *scriptWriter, _ int, t models.Task) error {
	seconds, err := strconv.Atoi(strings.TrimSpace(t.Primary))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDelay, t.Primary)
	}
	// timeout /t -1 waits for a key press
	seconds = max(seconds, 0)
	w.line("echo Waiting for %d seconds...", seconds)
	w.line("timeout /t %d /nobreak >nul", seconds)
	return nil
}

// emitPowerTransition schedules a shutdown or restart. The delay is passed
// to shutdown.exe unvalidated apart from losing its line breaks.
func emitPowerTransition(verb, flag string) emitFunc {
	return func(w *scriptWriter, _ int, t models.Task) error {
		w.raw("echo System will " + verb + " in " + echoText(t.Primary) + " seconds...")
		w.raw("shutdown " + flag + " /t " + breakStripper.Replace(t.Primary))
		return nil
	}
}

func emitSleep(w *scriptWriter, _ int, _ models.Task) error {
	w.raw("echo Putting system to sleep...")
	w.raw("rundll32.exe powrprof.dll,SetSuspendState 0,1,0")
	return nil
}

func emitScreenshot(w *scriptWriter, _ int, t models.Task) error {
	dir := trimTrailingSeparators(windowsPath(t.Primary))
	w.raw("echo Taking screenshot...")
	w.raw("if not exist " + quoteArg(dir) + " mkdir " + quoteArg(dir))

	ps := []string{
		`$ts=Get-Date -Format \"yyyy-MM-dd_HH-mm-ss\"`,
		`$path=\"` + psQuote(dir) + `\screenshot_$ts.png\"`,
		`[void][Reflection.Assembly]::LoadWithPartialName(\"System.Windows.Forms\")`,
		`[void][Reflection.Assembly]::LoadWithPartialName(\"System.Drawing\")`,
		`$bounds = [System.Windows.Forms.Screen]::PrimaryScreen.Bounds`,
		`$bmp = New-Object System.Drawing.Bitmap $bounds.Width, $bounds.Height`,
		`$g = [System.Drawing.Graphics]::FromImage($bmp)`,
		`$g.CopyFromScreen($bounds.X, $bounds.Y, 0, 0, $bounds.Size)`,
		`$bmp.Save($path)`,
		`$g.Dispose(); $bmp.Dispose()`,
		`Write-Host \"Screenshot saved to: $path\"`,
	}
	w.raw(`powershell -NoProfile -ExecutionPolicy Bypass -Command "` + strings.Join(ps, "; ") + `"`)
	w.raw("if errorlevel 1 echo ERROR: Failed to take screenshot")
	return nil
}

func emitCleanTemp(w *scriptWriter, _ int, _ models.Task) error {
	w.raw("echo Cleaning temporary files...")
	w.raw(`del /q /f /s "%TEMP%\*" >nul 2>&1`)
	w.raw("echo Temporary files cleaned.")
	return nil
}

func emitSecurityScan(w *scriptWriter, _ int, t models.Task) error {
	scan := strings.ToLower(strings.TrimSpace(t.Primary))
	scanType := "CustomScan"
	switch scan {
	case "quick":
		scanType = "QuickScan"
	case "full":
		scanType = "FullScan"
	case "":
		scan = "custom"
	}
	w.raw("echo Running " + echoText(scan) + " security scan...")
	w.raw(`powershell -Command "Start-MpScan -ScanType ` + scanType + `"`)
	return nil
}

func emitDeleteFile(w *scriptWriter, _ int, t models.Task) error {
	p := windowsPath(t.Primary)
	q, e := quoteArg(p), echoText(p)
	w.raw("echo Deleting file: " + e)
	w.raw("if exist " + q + " (")
	w.raw("  del /F /Q " + q)
	w.raw("  if errorlevel 1 (")
	w.raw("    call echo ERROR: Failed to delete file with code %%ERRORLEVEL%%")
	w.raw("  ) else (")
	w.raw("    echo Successfully deleted file: " + e)
	w.raw("  )")
	w.raw(") else (")
	w.raw("  echo WARNING: File not found: " + e)
	w.raw(")")
	return nil
}

// emitDeleteFolder honours the mode stored in Secondary. An empty or
// unrecognised mode deletes the folder with its contents.
func emitDeleteFolder(w *scriptWriter, n int, t models.Task) error {
	switch strings.ToLower(strings.TrimSpace(t.Secondary)) {
	case models.DeleteModeContentsOnly:
		return emitEmptyFolder(w, n, t)
	case models.DeleteModeIfEmpty:
		return emitDeleteFolderIfEmpty(w, n, t)
	}

	p := trimTrailingSeparators(windowsPath(t.Primary))
	q, e := quoteArg(p), echoText(p)
	w.raw("echo Deleting folder: " + e)
	w.raw("if exist " + q + " (")
	w.raw("  rmdir /s /q " + q)
	w.raw("  if errorlevel 1 (")
	w.raw("    call echo ERROR: Failed to delete folder with code %%ERRORLEVEL%%")
	w.raw("  ) else (")
	w.raw("    echo Successfully deleted folder and its contents: " + e)
	w.raw("  )")
	w.raw(") else (")
	w.raw("  echo WARNING: Folder not found: " + e)
	w.raw(")")
	return nil
}

func emitEmptyFolder(w *scriptWriter, _ int, t models.Task) error {
	p := trimTrailingSeparators(windowsPath(t.Primary))
	q, e := quoteArg(p), echoText(p)
	all := quoteArg(p + `\*`)
	w.raw("echo Emptying folder: " + e)
	w.raw("if exist " + q + " (")
	w.raw("  echo Deleting all subfolders in: " + e)
	w.raw("  for /d %%i in (" + all + `) do rmdir /s /q "%%i" >nul 2>&1`)
	w.raw("  echo Deleting all files in: " + e)
	w.raw("  del /f /q " + all + " >nul 2>&1")
	w.raw("  if errorlevel 1 (")
	w.raw("    call echo ERROR: Failed to empty folder with code %%ERRORLEVEL%%")
	w.raw("  ) else (")
	w.raw("    echo Successfully emptied folder: " + e)
	w.raw("  )")
	w.raw(") else (")
	w.raw("  echo WARNING: Folder not found: " + e)
	w.raw(")")
	return nil
}

// emitDeleteFolderIfEmpty uses rmdir without /s, which refuses to remove a
// non-empty folder, and then checks whether the folder is really gone.
func emitDeleteFolderIfEmpty(w *scriptWriter, _ int, t models.Task) error {
	p := trimTrailingSeparators(windowsPath(t.Primary))
	q, e := quoteArg(p), echoText(p)
	w.raw("echo Attempting to delete folder " + echoText("(only if empty)") + ": " + e)
	w.raw("if exist " + q + " (")
	w.raw("  rmdir /q " + q)
	w.raw("  if exist " + q + " (")
	w.raw("    echo WARNING: Could not delete folder " + e + " - it may not be empty or is locked")
	w.raw("  ) else (")
	w.raw("    echo Successfully deleted empty folder: " + e)
	w.raw("  )")
	w.raw(") else (")
	w.raw("  echo WARNING: Folder not found: " + e)
	w.raw(")")
	return nil
}

// emitBackupFolder copies the source folder into <destination>\<source leaf>.
// Any failed precondition jumps to this task's own error label so later
// tasks still run.
func emitBackupFolder(w *scriptWriter, n int, t models.Task) error {
	src := trimTrailingSeparators(windowsPath(t.Primary))
	dst := trimTrailingSeparators(windowsPath(t.Secondary))
	errLabel := fmt.Sprintf(":backup_error_%d", n)
	endLabel := fmt.Sprintf(":backup_end_%d", n)

	w.raw("echo Backing up folder: " + echoText(src))
	w.raw("echo to: " + echoText(dst))

	w.raw("if not exist " + quoteArg(src) + " (")
	w.raw("  echo ERROR: Source folder not found: " + echoText(src))
	w.raw("  goto " + errLabel)
	w.raw(")")

	w.raw("if not exist " + quoteArg(dst) + " (")
	w.raw("  mkdir " + quoteArg(dst))
	w.raw("  if errorlevel 1 (")
	w.raw("    echo ERROR: Could not create destination folder: " + echoText(dst))
	w.raw("    goto " + errLabel)
	w.raw("  )")
	w.raw(")")

	w.raw("for %%I in (" + quoteArg(src) + `) do set "source_name=%%~nxI"`)
	w.raw(`set "dest_path=` + escapePercent(argStripper.Replace(dst)) + `\%source_name%"`)
	w.raw(`if not exist "%dest_path%" (`)
	w.raw(`  mkdir "%dest_path%"`)
	w.raw("  if errorlevel 1 (")
	w.raw("    call echo ERROR: Could not create destination folder: %%dest_path%%")
	w.raw("    goto " + errLabel)
	w.raw("  )")
	w.raw(")")

	w.raw("xcopy " + quoteArg(src+`\*`) + ` "%dest_path%" /E /H /C /I /Y`)
	w.raw("if errorlevel 1 (")
	w.raw("  echo ERROR: Backup operation failed")
	w.raw("  goto " + errLabel)
	w.raw(") else (")
	w.raw("  call echo Successfully backed up " + echoText(src) + " to %%dest_path%%")
	w.raw(")")
	w.raw("goto " + endLabel)
	w.raw(errLabel)
	w.raw("echo Backup operation failed")
	w.raw(endLabel)
	return nil
}

func emitUnknown(w *scriptWriter, _ int, t models.Task) error {
	w.raw("echo Unknown task type: " + echoText(string(t.Kind)))
	return nil
}
