package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Recorder (info)
		"Recording %s at %d fps to %s":                 "%s を %d fps で %s に録画中",
		"Recording finished: %d frames written to %s": "録画完了: %d フレームを %s に書き込みました",
		"Recording cancelled":                          "録画がキャンセルされました",
		"Removed partial output %s":                    "途中まで書き込まれた %s を削除しました",

		// Session (debug)
		"Writing %s at %d fps to %s":  "%s を %d fps で %s に書き込み中",
		"Appended frames %d-%d":       "フレーム %d-%d を追加しました",
		"End of frames after %d frames": "%d フレームでフレームの終端に達しました",
		"Finished writing %d frames":  "%d フレームの書き込みを完了しました",

		// Writers
		"Encoded %d frames":                                 "%d フレームをエンコードしました",
		"Writing cancelled after %d frames":                 "%d フレームで書き込みをキャンセルしました",
		"Started %s for %s":                                 "%s を %s 用に起動しました",
		"Using %s backend for %s":                           "%s バックエンドで %s を書き込みます",
		"ffmpeg not available, falling back to Motion-JPEG in an AVI container": "ffmpeg が見つからないため Motion-JPEG (AVI コンテナ) にフォールバックします",
		"Writing an AVI container to %s":                                        "%s に AVI コンテナを書き込みます",

		// Frame providers
		"Loading %s":                            "%s を読み込み中",
		"Page ended the animation at frame %d":  "ページがフレーム %d でアニメーションを終了しました",

		// Warnings
		"Failed to remove partial output %s: %s": "途中まで書き込まれた %s の削除に失敗しました: %s",
		"Failed to save debug frame %d: %s":      "デバッグフレーム %d の保存に失敗しました: %s",
		"Encoder failed at %d/%d: %s":            "エンコーダが %d/%d で失敗しました: %s",

		// Errors
		"Recording failed: %s": "録画に失敗しました: %s",
	})
}
