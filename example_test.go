package mailprobe_test

import (
	"context"
	"fmt"

	"github.com/optimode/mailprobe"
)

func ExampleVerifyEmail() {
	// A syntactically invalid address is settled without any network I/O.
	result, _ := mailprobe.VerifyEmail(context.Background(), "not-an-email")
	fmt.Println(result.Valid, result.Confidence, result.Details.SmtpStatus)
	// Output: false 0 skipped
}

func ExampleIsValidFormat() {
	fmt.Println(mailprobe.IsValidFormat("user@example.com"))
	fmt.Println(mailprobe.IsValidFormat("user@@example.com"))
	// Output:
	// true
	// false
}

func ExampleIsDisposableEmail() {
	fmt.Println(mailprobe.IsDisposableEmail("test@mailinator.com"))
	// Output: true
}

func ExampleDetectProvider() {
	provider := mailprobe.DetectProvider([]string{"aspmx.l.google.com"})
	fmt.Println(provider.Name)
	// Output: Google Workspace
}

func ExampleSuggestDomain() {
	suggestion, ok := mailprobe.SuggestDomain("gmial.com")
	fmt.Println(suggestion, ok)
	// Output: gmail.com true
}

func ExampleNewEngine() {
	engine := mailprobe.NewEngine(mailprobe.Options{
		SMTPCheck:     false, // DNS-only pipeline
		CatchAllCheck: false,
	})

	result, _ := engine.VerifyEmail(context.Background(), "bad address")
	fmt.Println(result.Valid, result.Checks.IsValidSyntax)
	// Output: false false
}
