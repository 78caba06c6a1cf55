package core

import (
	"fmt"

	tele "gopkg.in/telebot.v4"

	"github.com/SychoAN/Tafsir-Al-Quran-bot/pkg/tgui"
)

const itemsPerPage = 10

// Callback routes. The values are stored in inline-button callback_data and
// must stay stable across releases (buttons in old chat messages keep their
// original data).
const (
	cbPagePrefix  = "page_"
	cbPlayPrefix  = "play_"
	cbManageWird  = "manage_wird"
	cbSetDuration = "set_duration"
	cbAddSurah    = "add_surah"
	cbStopWird    = "stop_wird"
	cbBackMain    = "back_main"
)

const (
	msgChoose        = "🎵 اختر السورة:"
	msgSent          = "🎵 تم إرسال الملفات! اختر آخر:"
	msgManage        = "⚙️ إدارة الورد اليومي:"
	msgAskDuration   = "⏱ الرجاء إرسال المدة اليومية بالدقائق (مثال: 10):"
	msgAskSurah      = "📖 الرجاء إرسال اسم السورة لإضافتها للورد:"
	msgStopped       = "✅ تم إيقاف الورد اليومي"
	msgDurationRange = "المدة يجب أن تكون بين 5 و 60 دقيقة"
	msgNotANumber    = "الرجاء إدخال رقم صحيح"
	msgUnknownSurah  = "اسم السورة غير صحيح. الرجاء المحاولة مرة أخرى"
	msgFailure       = "حدث خطأ، الرجاء المحاولة لاحقًا"
)

func welcomeText(deliverAt, timezone string) string {
	return "مرحبًا بك في بوت القرآن الكريم!\n" +
		fmt.Sprintf("⏰ سيتم إرسال الورد اليومي الساعة %s (%s)\n", deliverAt, timezone) +
		"يمكنك ضبط الورد من خلال زر '📅 إدارة الورد اليومي'"
}

func durationSetText(minutes int, deliverAt string) string {
	return fmt.Sprintf("✅ تم تعيين مدة الورد اليومي إلى %d دقائق\n", minutes) +
		fmt.Sprintf("سيتم إرسال الورد يوميًا الساعة %s", deliverAt)
}

func itemAddedText(name string, days, daily int) string {
	return fmt.Sprintf("✅ تمت إضافة سورة %s للورد اليومي\n", name) +
		fmt.Sprintf("ستحتاج %d أيام (%d دقيقة/يوم)", days, daily)
}

// catalogKeyboard renders one page of canonical names: one button per row,
// nav row when there are neighbouring pages, and the wird management entry.
func catalogKeyboard(names []string, page int) *tele.ReplyMarkup {
	if page < 0 {
		page = 0
	}
	start := page * itemsPerPage
	if start > len(names) {
		start = len(names)
	}
	end := start + itemsPerPage
	if end > len(names) {
		end = len(names)
	}

	kb := tgui.NewInline()
	for _, name := range names[start:end] {
		kb.Row(tgui.Btn(name, cbPlayPrefix+name))
	}

	var nav []tele.Btn
	if page > 0 {
		nav = append(nav, tgui.Btn("⬅ السابق", fmt.Sprintf("%s%d", cbPagePrefix, page-1)))
	}
	if end < len(names) {
		nav = append(nav, tgui.Btn("التالي ➡", fmt.Sprintf("%s%d", cbPagePrefix, page+1)))
	}
	if len(nav) > 0 {
		kb.Row(nav...)
	}

	kb.Row(tgui.Btn("📅 إدارة الورد اليومي", cbManageWird))
	return kb.Markup()
}

func wirdKeyboard() *tele.ReplyMarkup {
	return tgui.NewInline().
		Row(tgui.Btn("⏱ تعيين مدة الورد", cbSetDuration)).
		Row(tgui.Btn("➕ إضافة سورة للورد", cbAddSurah)).
		Row(tgui.Btn("❌ إيقاف الورد", cbStopWird)).
		Row(tgui.Btn("🔙 رجوع", cbBackMain)).
		Markup()
}

func backKeyboard() *tele.ReplyMarkup {
	return tgui.NewInline().
		Row(tgui.Btn("🔙 رجوع للقائمة", cbPagePrefix+"0")).
		Markup()
}
