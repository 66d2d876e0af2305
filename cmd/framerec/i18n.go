// Package main provides localization for the framerec CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Record frame-by-frame animations as video files.": "フレーム単位のアニメーションを動画ファイルに録画します。",

		// Record command
		"Interrupted, cancelling recording...":                    "中断されました。録画をキャンセルしています...",
		"recording cancelled":                                     "録画がキャンセルされました",
		"Recorded %d frames (%.1fs)":                              "%d フレームを録画しました (%.1f秒)",
		"Wrote %s instead of %s; the file is a Motion-JPEG AVI":   "%[2]s の代わりに %[1]s で書き込みました。ファイルは Motion-JPEG AVI です",
		"Output saved to %s (%s)":                                 "出力を %s に保存しました (%s)",
		"Output saved to %s":                                      "出力を %s に保存しました",
		"html source takes exactly one URL or file":               "html ソースには URL またはファイルを1つだけ指定してください",

		// Inspect command
		"File:       %s (%s)": "ファイル:         %s (%s)",
		"Codec:      %s":  "コーデック:       %s",
		"Size:       %dx%d": "サイズ:           %dx%d",
		"Timescale:  %d":  "タイムスケール:   %d",
		"Frames:     %d":  "フレーム数:       %d",
		"Duration:   %s":  "長さ:             %s",
		"Fragmented: yes": "フラグメント:     あり",

		// Version command
		"framerec version %s": "framerec バージョン %s",
	})
}
