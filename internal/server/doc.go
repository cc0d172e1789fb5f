// Package server は、TCPリスナーとワーカープールによるHTTPサーバーを管理します。
//
// このパッケージは、ソケットの作成からリクエスト処理、
// グレースフルシャットダウンまでのライフサイクルを担当します。
//
// 責務:
//   - ソケットの作成・バインド・リッスン (バックログ 50)
//   - 受け付けた接続を有界キューに積み、満杯なら即座に閉じる
//   - 固定数のワーカーで接続ごとのリクエストループを実行
//   - keep-alive と 1接続あたりの最大リクエスト数の管理
//   - 処理中の接続と統計情報の提供
//
// 仕様:
//   - HTTPの処理は net/http を使わず、1回の受信データだけを解析する
//   - 複数回の受信にまたがるリクエストは再構築しない
//   - シャットダウンは協調的で、処理中の接続が終わるまで待つ
package server
