package chat

import (
	"fmt"
	"strings"

	"celengan/internal/core"
)

// Reply texts for both locales. The Indonesian copy is the primary voice of
// the bot; English mirrors it for users who write in English.

func SetupInstructions(ch Channel, lang core.Language) string {
	if ch == WhatsApp {
		if lang == core.Indonesian {
			return "Halo! Nomor WhatsApp kamu belum terdaftar di Celengan.\n\n" +
				"Buka aplikasi Celengan → Settings → WhatsApp Integration, lalu masukkan nomor HP kamu untuk mulai."
		}
		return "Hi! Your WhatsApp number isn't registered in Celengan yet.\n\n" +
			"Open the Celengan app → Settings → WhatsApp Integration, and enter your phone number to get started."
	}
	if lang == core.Indonesian {
		return "Halo! Username Telegram kamu belum terdaftar di Celengan.\n\n" +
			"Buka aplikasi Celengan → Settings → Telegram Integration, lalu masukkan username Telegram kamu untuk mulai."
	}
	return "Hi! Your Telegram username isn't registered in Celengan yet.\n\n" +
		"Open the Celengan app → Settings → Telegram Integration, and enter your Telegram username to get started."
}

func ClarificationRequest(lang core.Language) string {
	if lang == core.Indonesian {
		return "Maaf, saya tidak mengerti pesanmu. Coba kirim seperti:\n" +
			"• \"Beli kopi 25rb\"\n• \"Gajian 5jt\"\n• \"Bayar listrik 150rb\"\n" +
			"• Ketik \"bantuan\" untuk info lebih lanjut"
	}
	return "Sorry, I didn't understand that. Try sending:\n" +
		"• \"Coffee 25000\"\n• \"Salary 5000000\"\n• \"Electric bill 150000\"\n" +
		"• Type \"help\" for more info"
}

func HelpMessage(lang core.Language, accounts []core.Account) string {
	names := make([]string, len(accounts))
	for i, a := range accounts {
		names[i] = "• " + a.Name
	}
	list := strings.Join(names, "\n")

	if lang == core.Indonesian {
		if list == "" {
			list = "(Belum ada akun)"
		}
		return "*Celengan Bot* - Catat transaksi via chat\n\n" +
			"*Contoh pesan:*\n• \"Beli makan siang 35rb\"\n• \"Gajian 6jt\"\n• \"Bayar listrik 150rb dari BRI\"\n\n" +
			"*Akunmu:*\n" + list + "\n\n" +
			"*Perintah:*\n• \"saldo\" - lihat saldo\n• \"transaksi\" - transaksi bulan ini\n" +
			"• \"akun\" - pilih akun default\n• \"atur <akun> <jumlah>\" - perbarui saldo"
	}
	if list == "" {
		list = "(No accounts yet)"
	}
	return "*Celengan Bot* - Log transactions via chat\n\n" +
		"*Example messages:*\n• \"Lunch 35000\"\n• \"Salary 6000000\"\n• \"Electric bill 150000 from BRI\"\n\n" +
		"*Your accounts:*\n" + list + "\n\n" +
		"*Commands:*\n• \"balance\" - view balances\n• \"transactions\" - this month's transactions\n" +
		"• \"accounts\" - pick a default account\n• \"set <account> <amount>\" - update a balance"
}

func BalanceMessage(lang core.Language, accounts []core.Account) string {
	var b strings.Builder
	if lang == core.Indonesian {
		b.WriteString("*Saldo Akunmu:*\n")
	} else {
		b.WriteString("*Your Account Balances:*\n")
	}
	var total int64
	for _, a := range accounts {
		total += a.Balance
		fmt.Fprintf(&b, "• %s: %s\n", a.Name, core.FormatIDR(a.Balance))
	}
	fmt.Fprintf(&b, "*Total: %s*", core.FormatIDR(total))
	return b.String()
}

func TransactionsMessage(lang core.Language, txs []core.Transaction) string {
	lines := make([]string, len(txs))
	for i, t := range txs {
		sign := "+"
		if t.Type == core.Spending {
			sign = "-"
		}
		lines[i] = fmt.Sprintf("• %s: %s %s%s", t.Date, t.Description, sign, core.FormatIDR(t.Amount))
	}
	list := strings.Join(lines, "\n")
	if lang == core.Indonesian {
		if list == "" {
			list = "Belum ada transaksi."
		}
		return "*Transaksi Bulan Ini:*\n" + list
	}
	if list == "" {
		list = "No transactions yet."
	}
	return "*This Month's Transactions:*\n" + list
}

func TransactionSaved(lang core.Language, in Intent, accountName string) string {
	emoji, verb := "💰", "Income"
	if in.Type == IntentSpending {
		emoji, verb = "💸", "Spending"
	}
	if lang == core.Indonesian {
		if in.Type == IntentSpending {
			verb = "Pengeluaran"
		} else {
			verb = "Pemasukan"
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s dicatat!\n%s\n%s", emoji, verb, in.Description, core.FormatIDR(in.Amount))
	if lang == core.English {
		b.Reset()
		fmt.Fprintf(&b, "%s %s logged!\n%s\n%s", emoji, verb, in.Description, core.FormatIDR(in.Amount))
	}
	if accountName != "" {
		fmt.Fprintf(&b, "\nAkun: %s", accountName)
	}
	if in.Category != "" {
		fmt.Fprintf(&b, "\nKategori: %s", in.Category)
	}
	if lang == core.Indonesian {
		b.WriteString("\n\n_Lihat detail di app Celengan_")
	} else {
		b.WriteString("\n\n_View details in the Celengan app_")
	}
	return b.String()
}

func SaveFailed(lang core.Language) string {
	if lang == core.Indonesian {
		return "Maaf, terjadi kesalahan saat menyimpan transaksi. Coba lagi."
	}
	return "Sorry, there was an error saving the transaction. Please try again."
}

func BalanceUpdated(lang core.Language, accountName string, previous, current int64) string {
	if lang == core.Indonesian {
		return fmt.Sprintf("✅ Saldo %s diperbarui: %s → %s",
			accountName, core.FormatIDR(previous), core.FormatIDR(current))
	}
	return fmt.Sprintf("✅ %s balance updated: %s → %s",
		accountName, core.FormatIDR(previous), core.FormatIDR(current))
}

func UnknownAccount(lang core.Language, name string, accounts []core.Account) string {
	names := make([]string, len(accounts))
	for i, a := range accounts {
		names[i] = "• " + a.Name
	}
	list := strings.Join(names, "\n")
	if lang == core.Indonesian {
		if list == "" {
			list = "(Belum ada akun)"
		}
		return fmt.Sprintf("Akun \"%s\" tidak ditemukan. Akun yang tersedia:\n%s", name, list)
	}
	if list == "" {
		list = "(No accounts yet)"
	}
	return fmt.Sprintf("Account \"%s\" not found. Available accounts:\n%s", name, list)
}

func BadAmount(lang core.Language, text string) string {
	if lang == core.Indonesian {
		return fmt.Sprintf("Jumlah \"%s\" tidak valid. Contoh yang benar: 500rb, 1.5jt, 250000.", text)
	}
	return fmt.Sprintf("Amount \"%s\" is not valid. Valid examples: 500rb, 1.5jt, 250000.", text)
}

func AccountList(lang core.Language, accounts []core.Account, defaultID string) string {
	var b strings.Builder
	if lang == core.Indonesian {
		b.WriteString("*Akunmu:*\n")
	} else {
		b.WriteString("*Your accounts:*\n")
	}
	for i, a := range accounts {
		marker := ""
		if a.ID == defaultID {
			marker = " ★"
		}
		fmt.Fprintf(&b, "%d. %s%s\n", i+1, a.Name, marker)
	}
	if lang == core.Indonesian {
		b.WriteString("\nKetik \"akun <nomor>\" untuk memilih akun default.")
	} else {
		b.WriteString("\nType \"accounts <number>\" to pick your default account.")
	}
	return b.String()
}

func DefaultAccountSet(lang core.Language, accountName string) string {
	if lang == core.Indonesian {
		return fmt.Sprintf("✅ Akun default diatur ke %s.", accountName)
	}
	return fmt.Sprintf("✅ Default account set to %s.", accountName)
}
