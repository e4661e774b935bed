package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"shmboard/models"
	"shmboard/utils"
)

func renderEstimate(w io.Writer, res models.CalculationResult) {
	out := res.Output
	d := out.Display
	cur := d.Currency

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Network data:\t%s\n", res.Network.Source)
	fmt.Fprintf(tw, "SHM price:\t%s\n", utils.FormatSpotPrices(res.Network.SpotPrice))
	fmt.Fprintf(tw, "Activation probability:\t%s per day\n", utils.FormatProbability(out.Probability))
	fmt.Fprintf(tw, "Reward per activation:\t%s\n", utils.FormatAmount(models.CurrencySHM, res.Network.RewardPerActivation))
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "Daily reward:\t%s\n", utils.FormatWithNative(cur, d.DailyReward, out.DailyReward))
	fmt.Fprintf(tw, "Weekly reward:\t%s\n", utils.FormatWithNative(cur, d.WeeklyReward, out.WeeklyReward))
	fmt.Fprintf(tw, "Monthly reward:\t%s\n", utils.FormatWithNative(cur, d.MonthlyReward, out.MonthlyReward))
	fmt.Fprintf(tw, "Annual reward:\t%s\n", utils.FormatWithNative(cur, d.AnnualReward, out.AnnualReward))
	fmt.Fprintf(tw, "Monthly cost:\t%s\n", utils.FormatWithNative(cur, d.MonthlyCost, out.MonthlyCost))
	fmt.Fprintf(tw, "Net annual profit:\t%s\n", utils.FormatWithNative(cur, d.NetAnnualProfit, out.NetAnnualProfit))
	fmt.Fprintf(tw, "Total investment:\t%s\n", utils.FormatWithNative(cur, d.TotalInvestment, out.TotalInvestment))
	fmt.Fprintf(tw, "ROI:\t%s\n", utils.FormatPercent(out.ROI))
	fmt.Fprintf(tw, "APY:\t%s\n", utils.FormatPercent(out.APY))
	fmt.Fprintf(tw, "Net daily return:\t%s\n", utils.FormatPercent(out.NetDailyReturn))
	tw.Flush()

	for _, warn := range out.Warnings {
		fmt.Fprintln(w, "warning:", warn)
	}
}

func renderNetwork(w io.Writer, snap models.NetworkSnapshot) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Source:\t%s\n", snap.Source)
	fmt.Fprintf(tw, "Total nodes:\t%d\n", snap.TotalNodes)
	fmt.Fprintf(tw, "Community nodes:\t%d\n", snap.CommunityNodes)
	fmt.Fprintf(tw, "Standby nodes:\t%d\n", snap.StandbyNodes)
	fmt.Fprintf(tw, "Hourly reward:\t%s\n", utils.FormatAmount(models.CurrencySHM, snap.HourlyReward))
	fmt.Fprintf(tw, "Reward per activation:\t%s\n", utils.FormatAmount(models.CurrencySHM, snap.RewardPerActivation))
	fmt.Fprintf(tw, "Activation probability:\t%s per day\n", utils.FormatProbability(snap.ActivationProbability))
	fmt.Fprintf(tw, "SHM price:\t%s\n", utils.FormatSpotPrices(snap.SpotPrice))
	tw.Flush()
}

func renderBoard(w io.Writer, page *models.LeaderboardPage) {
	title := "Leaderboard"
	if page.Order == "asc" {
		title = "Loserboard"
	}
	fmt.Fprintf(w, "%s (%s) page %d/%d, %d validators\n", title, page.Period, page.Page, page.TotalPages, page.Total)
	if page.Stale {
		fmt.Fprintln(w, "warning: backend unreachable, showing last known data")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Rank\tAlias\tAddress\tType\tCountry\tActivations\t")
	for _, v := range page.Validators {
		country := v.Country
		if country == "" {
			country = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t\n", v.Rank, v.DisplayAlias, v.ShortAddress, v.NodeType, country, v.Activations)
	}
	tw.Flush()
}

func renderAdminValidators(w io.Writer, validators []models.AdminValidator) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Public key\tAlias\tAvatar\tIP\tFoundation\t")
	for _, v := range validators {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%v\t\n", utils.TruncateAddress(v.PublicKey), utils.DisplayAlias(v.Alias), v.Avatar, v.IP, v.Foundation)
	}
	tw.Flush()
}
