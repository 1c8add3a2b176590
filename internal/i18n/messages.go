package i18n

// Message keys. English text is the fallback for every key.
const (
	MsgRegistered        = "auth.registered"
	MsgLoggedIn          = "auth.logged_in"
	MsgLoggedOut         = "auth.logged_out"
	MsgLoggedOutAll      = "auth.logged_out_all"
	MsgFailed            = "auth.failed"
	MsgThrottle          = "auth.throttle"
	MsgUnauthenticated   = "auth.unauthenticated"
	MsgForbidden         = "auth.forbidden"
	MsgWelcomeBack       = "auth.welcome_back"
	MsgWelcomeNew        = "auth.welcome_new"
	MsgGoodbye           = "auth.goodbye"
	MsgTokenNotFound     = "token.not_found"
	MsgTokenRevoked      = "token.revoked"
	MsgCannotRevoke      = "token.cannot_revoke_current"
	MsgTokenRefreshed    = "token.refreshed"
	MsgProfileUpdated    = "profile.updated"
	MsgPasswordChanged   = "password.changed"
	MsgPasswordIncorrect = "password.current_incorrect"
	MsgResetLinkSent     = "password.reset_link_sent"
	MsgResetUnknownEmail = "password.reset_unknown_email"
	MsgResetInvalid      = "password.reset_invalid"
	MsgResetDone         = "password.reset_done"
	MsgResetSubject      = "password.reset_subject"
	MsgResetBody         = "password.reset_body"
	MsgEmailTaken        = "email.taken"
	MsgValidationFailed  = "validation.failed"
	MsgPageExpired       = "http.page_expired"
	MsgTooManyRequests   = "http.too_many_requests"
	MsgNotFound          = "http.not_found"
	MsgInternalError     = "http.internal_error"
	MsgMediaCreated      = "media.created"
	MsgMediaDeleted      = "media.deleted"
	MsgMediaNotFound     = "media.not_found"
	MsgMediaType         = "media.unsupported_type"
	MsgMediaTooLarge     = "media.too_large"
)

// Validation keys take the translated attribute name as their first argument.
const (
	ValRequired       = "validation.required"
	ValEmail          = "validation.email"
	ValMin            = "validation.min"
	ValMax            = "validation.max"
	ValURL            = "validation.url"
	ValConfirmed      = "validation.confirmed"
	ValPasswordPolicy = "validation.password_policy"
	ValInvalid        = "validation.invalid"
)

type translation struct {
	en string
	ja string
}

var messages = map[string]translation{
	MsgRegistered:        {"Registration successful", "登録が完了しました"},
	MsgLoggedIn:          {"Login successful", "ログインしました"},
	MsgLoggedOut:         {"Logout successful", "ログアウトしました"},
	MsgLoggedOutAll:      {"Logged out from all devices successfully", "すべてのデバイスからログアウトしました"},
	MsgFailed:            {"The provided credentials are incorrect.", "メールアドレスまたはパスワードが正しくありません。"},
	MsgThrottle:          {"Too many login attempts. Please try again in %d seconds.", "ログイン試行回数が多すぎます。%d秒後に再度お試しください。"},
	MsgUnauthenticated:   {"Unauthenticated.", "認証が必要です。"},
	MsgForbidden:         {"This action is unauthorized.", "この操作は許可されていません。"},
	MsgWelcomeBack:       {"Welcome back, %s!", "おかえりなさい、%sさん！"},
	MsgWelcomeNew:        {"Your account has been created. Welcome to the blog, %s!", "アカウントが正常に作成されました！ブログへようこそ、%sさん！"},
	MsgGoodbye:           {"See you soon, %s! You have been logged out.", "%sさん、お疲れさまでした！正常にログアウトしました。"},
	MsgTokenNotFound:     {"Token not found or does not belong to you", "トークンが見つからないか、アクセス権がありません"},
	MsgTokenRevoked:      {"Token revoked successfully", "トークンを無効化しました"},
	MsgCannotRevoke:      {"Cannot revoke current token. Use logout endpoint instead.", "現在のトークンは無効化できません。ログアウトを使用してください。"},
	MsgTokenRefreshed:    {"Token refreshed successfully", "トークンを更新しました"},
	MsgProfileUpdated:    {"Profile updated successfully", "プロフィールを更新しました"},
	MsgPasswordChanged:   {"Password changed successfully. All other sessions have been terminated.", "パスワードを変更しました。他のすべてのセッションは終了しました。"},
	MsgPasswordIncorrect: {"The current password is incorrect.", "現在のパスワードが正しくありません。"},
	MsgResetLinkSent:     {"We have emailed your password reset link.", "パスワードリセットリンクをメールで送信しました！メールをご確認ください。"},
	MsgResetUnknownEmail: {"We can't find a user with that email address.", "指定されたメールアドレスは登録されていません。"},
	MsgResetInvalid:      {"This password reset token is invalid or has expired.", "パスワードリセットトークンが無効か、有効期限が切れています。"},
	MsgResetDone:         {"Your password has been reset. Please log in with your new password.", "パスワードが正常にリセットされました。新しいパスワードでログインしてください。"},
	MsgResetSubject:      {"Reset your password", "パスワードリセットのご案内"},
	MsgResetBody: {
		"You are receiving this email because we received a password reset request for your account.\n\nReset your password: %s\n\nThis link will expire in %d minutes.\nIf you did not request a password reset, no further action is required.\n",
		"このメールは、パスワードリセットのリクエストを受信したため送信されています。\n\nパスワードをリセット: %s\n\nこのリンクは%d分後に有効期限が切れます。\nパスワードリセットをリクエストしていない場合は、このメールを無視してください。\n",
	},
	MsgEmailTaken:       {"The email has already been taken.", "メールアドレスはすでに使用されています。"},
	MsgValidationFailed: {"The given data was invalid.", "入力内容に誤りがあります。"},
	MsgPageExpired:      {"Page expired. Please reload and try again.", "ページの有効期限が切れました。再読み込みしてからお試しください。"},
	MsgTooManyRequests:  {"Too many requests. Please slow down.", "リクエストが多すぎます。しばらくしてからお試しください。"},
	MsgNotFound:         {"Resource not found", "リソースが見つかりません"},
	MsgInternalError:    {"An unexpected error occurred.", "予期しないエラーが発生しました。"},
	MsgMediaCreated:     {"Upload URL created", "アップロードURLを発行しました"},
	MsgMediaDeleted:     {"Media deleted successfully", "メディアを削除しました"},
	MsgMediaNotFound:    {"Media not found", "メディアが見つかりません"},
	MsgMediaType:        {"Only JPEG, PNG, GIF and WebP images can be uploaded.", "アップロードできるのはJPEG、PNG、GIF、WebP画像のみです。"},
	MsgMediaTooLarge:    {"The file may not be greater than %d kilobytes.", "ファイルは%dキロバイト以下にしてください。"},

	ValRequired:       {"The %s field is required.", "%sは必須です。"},
	ValEmail:          {"The %s must be a valid email address.", "%sには有効なメールアドレスを指定してください。"},
	ValMin:            {"The %s must be at least %s characters.", "%sは%s文字以上で入力してください。"},
	ValMax:            {"The %s may not be greater than %s characters.", "%sは%s文字以下で入力してください。"},
	ValURL:            {"The %s format is invalid.", "%sには有効なURLを指定してください。"},
	ValConfirmed:      {"The %s confirmation does not match.", "%[1]sと確認用%[1]sが一致しません。"},
	ValPasswordPolicy: {"The %s must contain at least one letter and one number.", "%sには英字と数字をそれぞれ1文字以上含めてください。"},
	ValInvalid:        {"The %s is invalid.", "%sが正しくありません。"},
}

// attributes maps request field names to their display names.
var attributes = map[string]translation{
	"name":                  {"name", "名前"},
	"email":                 {"email", "メールアドレス"},
	"password":              {"password", "パスワード"},
	"password_confirmation": {"password confirmation", "パスワード（確認用）"},
	"current_password":      {"current password", "現在のパスワード"},
	"token":                 {"token", "トークン"},
	"avatar":                {"avatar", "アバター"},
	"bio":                   {"bio", "自己紹介"},
	"website":               {"website", "ウェブサイト"},
	"twitter":               {"twitter", "Twitter"},
	"linkedin":              {"linkedin", "LinkedIn"},
	"github":                {"github", "GitHub"},
	"filename":              {"filename", "ファイル名"},
	"content_type":          {"content type", "ファイル形式"},
	"size":                  {"size", "ファイルサイズ"},
	"alt_text":              {"alt text", "代替テキスト"},
}
