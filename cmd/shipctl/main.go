// shipctl 运费服务运营工具：签发运营 Token、试算报价、维护运费、失效缓存
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"marketplace_shipping_v1/internal/api/dto"
	"marketplace_shipping_v1/internal/config"
	"marketplace_shipping_v1/internal/middleware"
	"marketplace_shipping_v1/pkg/client"
)

const usage = `用法: shipctl <命令> [参数]

命令:
  token   -operator NAME              用配置中的运营密钥签发 Token
  zone    -postal CODE                邮编解析配送区域
  quote   -file cart.json             试算报价（文件内容为报价请求 JSON，- 表示标准输入）
  rate    -zone Z -tier T -method M [-producer P] -price 5.00
  flush   [-categories rates,discounts] [-producer P]

公共参数:
  -addr   服务地址（默认 $SHIPPING_ADDR 或 http://localhost:8080）
  -token  运营 Token（默认 $SHIPPING_TOKEN）
  -config 配置文件（token 命令使用，默认 $CONFIG_PATH）
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "shipctl %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func run(cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	addr := fs.String("addr", getEnv("SHIPPING_ADDR", "http://localhost:8080"), "服务地址")
	token := fs.String("token", os.Getenv("SHIPPING_TOKEN"), "运营 Token")
	configPath := fs.String("config", os.Getenv("CONFIG_PATH"), "配置文件")
	operator := fs.String("operator", "", "运营人员")
	postal := fs.String("postal", "", "邮编")
	file := fs.String("file", "-", "报价请求 JSON 文件")
	zone := fs.Int64("zone", 0, "区域 ID")
	tier := fs.Int64("tier", 0, "档位 ID")
	method := fs.Int64("method", 0, "配送方式 ID")
	producer := fs.Int64("producer", 0, "生产者 ID（0 表示不指定）")
	price := fs.String("price", "", "运费")
	categories := fs.String("categories", "", "缓存类别，逗号分隔")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	api := client.New(client.Options{BaseURL: *addr, Token: *token, RetryCount: 2})

	switch cmd {
	case "token":
		return issueToken(*configPath, *operator)

	case "zone":
		resp, err := api.ResolveZone(ctx, *postal)
		if err != nil {
			return err
		}
		return printJSON(resp)

	case "quote":
		var req dto.QuoteReq
		if err := readJSON(*file, &req); err != nil {
			return err
		}
		resp, err := api.Quote(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(resp)

	case "rate":
		p, err := decimal.NewFromString(*price)
		if err != nil {
			return fmt.Errorf("运费格式错误 %q: %w", *price, err)
		}
		req := dto.UpsertRateReq{ZoneID: *zone, WeightTierID: *tier, DeliveryMethodID: *method, Price: p}
		if *producer > 0 {
			req.ProducerID = producer
		}
		resp, err := api.UpsertRate(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(resp)

	case "flush":
		req := dto.FlushCacheReq{}
		if *categories != "" {
			req.Categories = strings.Split(*categories, ",")
		}
		if *producer > 0 {
			req.ProducerID = producer
		}
		resp, err := api.FlushCache(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(resp)

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("未知命令")
	}
}

func issueToken(configPath, operator string) error {
	if operator == "" {
		return fmt.Errorf("缺少 -operator")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Admin.Secret == "" {
		return fmt.Errorf("admin.secret 未配置")
	}

	tok, err := middleware.GenerateOperatorToken(middleware.OperatorAuthConfig{
		SecretKey: cfg.Admin.Secret,
		Issuer:    cfg.Admin.Issuer,
		TokenTTL:  cfg.Admin.TokenTTL,
	}, operator)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}

func readJSON(path string, v interface{}) error {
	f := os.Stdin
	if path != "-" {
		var err error
		if f, err = os.Open(path); err != nil {
			return err
		}
		defer f.Close()
	}
	return json.NewDecoder(f).Decode(v)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
