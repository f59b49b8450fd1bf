// Package rehmat embeds the Rehmat Shipping user lookup in a Go program.
//
// The client fetches the user directory on every call, keeps the users whose
// name or email contains the term (case-insensitive) and can render the
// matches as the same PDF report the service produces.
//
//	client := rehmat.New(rehmat.WithTimeout(5 * time.Second))
//	matches, err := client.Search(ctx, "leanne")
//	if errors.Is(err, rehmat.ErrTransport) {
//	    // directory unreachable or non-2xx
//	}
//
//	f, _ := os.Create("search_result.pdf")
//	defer f.Close()
//	n, err := client.WriteReport(ctx, "leanne", f)
package rehmat
